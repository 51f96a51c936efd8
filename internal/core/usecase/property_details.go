package usecase

import (
	"context"
	"strings"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
	"houseclay-client/internal/store"
)

type PropertyDetailsUseCase struct {
	api   port.PropertyAPIPort
	store AppStore
}

func NewPropertyDetailsUseCase(api port.PropertyAPIPort, st AppStore) *PropertyDetailsUseCase {
	return &PropertyDetailsUseCase{api: api, store: st}
}

// Get: вошедший пользователь получает карточку с контактами владельца.
func (uc *PropertyDetailsUseCase) Get(ctx context.Context, propertyID string) (*domain.PropertyDetail, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return nil, errMissingPropertyID
	}
	authenticated := uc.store.State().Session.IsAuthenticated
	contextkeys.LoggerFromContext(ctx).Debug("Loading property details", port.Fields{
		"use_case":      "GetPropertyDetails",
		"property_id":   propertyID,
		"authenticated": authenticated,
	})

	if authenticated {
		return uc.api.GetMyProperty(ctx, propertyID)
	}
	return uc.api.GetPublicProperty(ctx, propertyID)
}

func (uc *PropertyDetailsUseCase) Report(ctx context.Context, propertyID, reportType, comment string) error {
	if !uc.store.State().Session.IsAuthenticated {
		return domain.ErrAuthRequired
	}
	return uc.api.ReportProperty(ctx, propertyID, reportType, comment)
}

// ContactOwner раскрывает контакты владельца и обновляет баланс
// connect-кредитов в профиле.
func (uc *PropertyDetailsUseCase) ContactOwner(ctx context.Context, propertyID string) (*domain.OwnerContactResult, error) {
	propertyID = strings.TrimSpace(propertyID)
	if propertyID == "" {
		return nil, errMissingPropertyID
	}
	state := uc.store.State()
	if !state.Session.IsAuthenticated {
		return nil, domain.ErrAuthRequired
	}
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "ContactOwner", "property_id": propertyID})
	ucLogger.Info("Use case started", nil)

	result, err := uc.api.ContactOwner(ctx, propertyID)
	if err != nil {
		ucLogger.Warn("Contact owner failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	if state.User != nil {
		profile := *state.User
		profile.ConnectBal = result.ConnectBal
		if err := uc.store.Dispatch(ctx, store.SetUserProfile{Profile: profile}); err != nil {
			ucLogger.Warn("Failed to persist connect balance", port.Fields{"error": err.Error()})
		}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"connect_bal": result.ConnectBal})
	return result, nil
}
