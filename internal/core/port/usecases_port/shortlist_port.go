package usecases_port

import (
	"context"

	"houseclay-client/internal/core/domain"
)

type ShortlistUseCase interface {
	// Toggle возвращает новое состояние: true - объект в избранном.
	Toggle(ctx context.Context, listing domain.PropertyListing) (bool, error)
	IsShortlisted(propertyID string) bool
	FetchAll(ctx context.Context) ([]domain.PropertyListing, error)
}
