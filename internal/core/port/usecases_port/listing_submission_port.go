package usecases_port

import (
	"context"

	"houseclay-client/internal/core/domain"
)

// ListingSubmissionUseCase отправляет сохранённый черновик объявления.
type ListingSubmissionUseCase interface {
	Submit(ctx context.Context, kind domain.DraftKind) (domain.SubmittedListing, error)
}
