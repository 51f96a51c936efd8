package usecase

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
	"houseclay-client/internal/store"
)

var errMissingPropertyID = errors.New("property id is required")

// ShortlistSync меняет избранное только после подтверждения сервера.
type ShortlistSync struct {
	api      port.ShortlistAPIPort
	store    AppStore
	nav      port.NavigatorPort
	notifier port.NotifierPort
	flight   singleflight.Group
}

func NewShortlistSync(api port.ShortlistAPIPort, st AppStore, nav port.NavigatorPort, notifier port.NotifierPort) *ShortlistSync {
	return &ShortlistSync{api: api, store: st, nav: nav, notifier: notifier}
}

func (s *ShortlistSync) IsShortlisted(propertyID string) bool {
	return s.store.State().Shortlist.Contains(propertyID)
}

// Toggle выполняет противоположную мутацию. Одновременные вызовы для
// одного объекта делят один запрос.
func (s *ShortlistSync) Toggle(ctx context.Context, listing domain.PropertyListing) (bool, error) {
	if listing.PropertyID == "" {
		return false, errMissingPropertyID
	}
	if !s.store.State().Session.IsAuthenticated {
		s.nav.Navigate(port.ScreenAuth)
		return false, domain.ErrAuthRequired
	}

	v, err, shared := s.flight.Do(listing.PropertyID, func() (interface{}, error) {
		return s.toggle(ctx, listing)
	})
	if err != nil {
		return s.IsShortlisted(listing.PropertyID), err
	}
	if shared {
		contextkeys.LoggerFromContext(ctx).Debug("Shortlist toggle shared with concurrent call", port.Fields{"property_id": listing.PropertyID})
	}
	return v.(bool), nil
}

func (s *ShortlistSync) toggle(ctx context.Context, listing domain.PropertyListing) (bool, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ToggleShortlist",
		"property_id": listing.PropertyID,
	})

	present := s.IsShortlisted(listing.PropertyID)
	ucLogger.Info("Use case started", port.Fields{"currently_shortlisted": present})

	var err error
	if present {
		err = s.api.RemoveFromShortlist(ctx, listing.PropertyID)
	} else {
		err = s.api.AddToShortlist(ctx, listing.PropertyID)
	}

	if err != nil {
		if domain.IsUnauthorized(err) {
			ucLogger.Warn("Session expired while updating shortlist", nil)
			if err := s.store.Dispatch(ctx, store.Logout{}); err != nil {
				ucLogger.Warn("Failed to persist logout", port.Fields{"error": err.Error()})
			}
			s.nav.Navigate(port.ScreenAuth)
			s.notifier.Error("Login required", "Please log in to continue.")
			return false, err
		}
		ucLogger.Error("Failed to update shortlist", err, nil)
		s.notifier.Error("Failed to update shortlist", domain.NormalizeError(err))
		return false, err
	}

	var action store.Action = store.AddToShortlist{Listing: listing}
	if present {
		action = store.RemoveFromShortlist{PropertyID: listing.PropertyID}
	}
	if err := s.store.Dispatch(ctx, action); err != nil {
		ucLogger.Warn("Failed to persist shortlist", port.Fields{"error": err.Error()})
	}
	if present {
		s.notifier.Success("Removed from shortlist", "")
	} else {
		s.notifier.Success("Added to shortlist", "")
	}

	ucLogger.Info("Use case finished successfully", nil)
	return !present, nil
}

// FetchAll заменяет локальное избранное серверным списком целиком.
func (s *ShortlistSync) FetchAll(ctx context.Context) ([]domain.PropertyListing, error) {
	if !s.store.State().Session.IsAuthenticated {
		return []domain.PropertyListing{}, nil
	}

	items, err := s.api.ListShortlisted(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Dispatch(ctx, store.SetShortlist{Items: items}); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Failed to persist shortlist", port.Fields{"error": err.Error()})
	}
	return s.store.State().Shortlist.Items(), nil
}
