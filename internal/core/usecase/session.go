package usecase

import (
	"context"
	"strings"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
	"houseclay-client/internal/store"
)

type SessionUseCase struct {
	auth       port.AuthAPIPort
	users      port.UserAPIPort
	properties port.PropertyAPIPort
	store      AppStore
	nav        port.NavigatorPort
}

func NewSessionUseCase(auth port.AuthAPIPort, users port.UserAPIPort, properties port.PropertyAPIPort, st AppStore, nav port.NavigatorPort) *SessionUseCase {
	return &SessionUseCase{auth: auth, users: users, properties: properties, store: st, nav: nav}
}

// Logout очищает локальную сессию даже если сервер ответил ошибкой.
// Ошибка сервера возвращается вызывающему.
func (uc *SessionUseCase) Logout(ctx context.Context) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "Logout"})
	ucLogger.Info("Use case started", nil)

	apiErr := uc.auth.Logout(ctx)
	if apiErr != nil {
		ucLogger.Warn("Logout request failed", port.Fields{"error": apiErr.Error()})
	}
	if err := uc.store.Dispatch(ctx, store.Logout{}); err != nil {
		ucLogger.Error("Failed to persist logout", err, nil)
	}

	if apiErr == nil {
		ucLogger.Info("Use case finished successfully", nil)
	}
	return apiErr
}

// RefreshUser подтягивает профиль и избранное с сервера.
func (uc *SessionUseCase) RefreshUser(ctx context.Context) (*domain.UserDetail, error) {
	if !uc.store.State().Session.IsAuthenticated {
		return nil, domain.ErrAuthRequired
	}
	detail, err := uc.users.GetUserDetail(ctx)
	if err != nil {
		return nil, err
	}
	log := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "RefreshUser"})
	if err := uc.store.Dispatch(ctx, store.SetUserProfile{Profile: detail.Profile}); err != nil {
		log.Warn("Failed to persist user profile", port.Fields{"error": err.Error()})
	}
	if err := uc.store.Dispatch(ctx, store.SetShortlist{Items: detail.ShortlistedProperties}); err != nil {
		log.Warn("Failed to persist shortlist", port.Fields{"error": err.Error()})
	}
	return detail, nil
}

func (uc *SessionUseCase) RequireAuth(ctx context.Context, intent domain.RedirectIntent) (bool, error) {
	if uc.store.State().Session.IsAuthenticated {
		return true, nil
	}
	if err := uc.store.Dispatch(ctx, store.SetRedirectIntent{Intent: intent}); err != nil {
		return false, err
	}
	uc.nav.Navigate(port.ScreenAuth)
	return false, nil
}

func (uc *SessionUseCase) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	if !uc.store.State().Session.IsAuthenticated {
		return domain.ErrAuthRequired
	}
	update.Name = strings.TrimSpace(update.Name)
	update.Email = strings.TrimSpace(update.Email)
	if update.Name == "" || update.Email == "" {
		return domain.ErrMissingProfile
	}
	if err := uc.users.UpdateUser(ctx, update); err != nil {
		return err
	}
	_, err := uc.RefreshUser(ctx)
	return err
}

func (uc *SessionUseCase) DeactivateProperty(ctx context.Context, propertyID string) error {
	if !uc.store.State().Session.IsAuthenticated {
		return domain.ErrAuthRequired
	}
	if strings.TrimSpace(propertyID) == "" {
		return errMissingPropertyID
	}
	return uc.properties.DeactivateProperty(ctx, propertyID)
}
