package usecase

import (
	"context"
	"fmt"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
	"houseclay-client/internal/store"
)

// ListingSubmission публикует или правит объявление из сохранённого черновика.
// Черновик удаляется только после ответа сервера об успехе.
type ListingSubmission struct {
	api      port.ListingAPIPort
	store    AppStore
	nav      port.NavigatorPort
	notifier port.NotifierPort
}

func NewListingSubmission(api port.ListingAPIPort, st AppStore, nav port.NavigatorPort, notifier port.NotifierPort) *ListingSubmission {
	return &ListingSubmission{api: api, store: st, nav: nav, notifier: notifier}
}

func (uc *ListingSubmission) Submit(ctx context.Context, kind domain.DraftKind) (domain.SubmittedListing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "SubmitListing", "draft": string(kind)})

	state := uc.store.State()
	if !state.Session.IsAuthenticated {
		// после входа пользователь вернётся к форме объявления
		if err := uc.store.Dispatch(ctx, store.SetRedirectIntent{Intent: domain.RedirectFromAddProperty}); err != nil {
			ucLogger.Warn("Failed to persist redirect intent", port.Fields{"error": err.Error()})
		}
		uc.nav.Navigate(port.ScreenAuth)
		return domain.SubmittedListing{}, domain.ErrAuthRequired
	}

	draft, ok := state.Drafts[kind]
	if !ok {
		return domain.SubmittedListing{}, fmt.Errorf("%w: %s", domain.ErrDraftNotFound, kind)
	}
	if err := draft.Validate(kind); err != nil {
		return domain.SubmittedListing{}, err
	}
	ucLogger.Info("Use case started", port.Fields{"category": string(draft.Category), "fields": len(draft.Fields)})

	var (
		result domain.SubmittedListing
		err    error
	)
	if kind == domain.DraftEditProperty {
		result, err = uc.api.UpdateProperty(ctx, draft)
	} else {
		result, err = uc.api.AddProperty(ctx, draft)
	}
	if err != nil {
		ucLogger.Error("Failed to submit listing", err, nil)
		uc.notifier.Error("Failed to submit property", domain.NormalizeError(err))
		return domain.SubmittedListing{}, err
	}

	if err := uc.store.Dispatch(ctx, store.ClearDraft{Kind: kind}); err != nil {
		ucLogger.Warn("Failed to persist cleared draft", port.Fields{"error": err.Error()})
	}
	if kind == domain.DraftEditProperty {
		uc.notifier.Success("Property updated", result.Message)
	} else {
		uc.notifier.Success("Property listed", result.Message)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"property_id": result.PropertyID})
	return result, nil
}
