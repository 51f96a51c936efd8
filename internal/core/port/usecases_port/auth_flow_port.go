package usecases_port

import (
	"context"

	"houseclay-client/internal/core/domain"
)

// AuthFlowView - снимок сценария входа для отрисовки.
type AuthFlowView struct {
	Step      domain.AuthStep
	Form      domain.AuthFlowForm
	Loading   bool
	Error     string
	CanResend bool
}

type AuthFlowUseCase interface {
	Start(ctx context.Context) error
	SetPhone(raw string)
	SetName(name string)
	SetEmail(email string)
	SubmitPhone(ctx context.Context) error
	SubmitRegistration(ctx context.Context) error
	EnterDigit(slot int, value string) bool
	Backspace(slot int)
	SubmitOTP(ctx context.Context) error
	Resend(ctx context.Context) error
	Cancel(ctx context.Context) error
	Close()
	View() AuthFlowView
}
