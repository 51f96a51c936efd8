package usecases_port

import (
	"context"

	"houseclay-client/internal/core/domain"
)

type PropertyDetailsUseCase interface {
	Get(ctx context.Context, propertyID string) (*domain.PropertyDetail, error)
	Report(ctx context.Context, propertyID, reportType, comment string) error
	ContactOwner(ctx context.Context, propertyID string) (*domain.OwnerContactResult, error)
}
