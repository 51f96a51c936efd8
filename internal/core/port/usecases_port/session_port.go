package usecases_port

import (
	"context"

	"houseclay-client/internal/core/domain"
)

type SessionUseCase interface {
	Logout(ctx context.Context) error
	RefreshUser(ctx context.Context) (*domain.UserDetail, error)
	// RequireAuth возвращает true, если пользователь уже вошёл. Иначе
	// запоминает намерение и открывает экран входа.
	RequireAuth(ctx context.Context, intent domain.RedirectIntent) (bool, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error
	DeactivateProperty(ctx context.Context, propertyID string) error
}
