package store

import "houseclay-client/internal/core/domain"

// Action - типизированное действие. Состояние меняется только через Dispatch.
type Action interface {
	actionName() string
}

type (
	SetAuthenticated    struct{ Value bool }
	SetAuthStep         struct{ Step domain.AuthStep }
	SetRedirectIntent   struct{ Intent domain.RedirectIntent }
	ClearRedirectIntent struct{}
	// Logout очищает сессию, профиль и избранное.
	Logout struct{}

	SetUserProfile   struct{ Profile domain.UserProfile }
	ClearUserProfile struct{}

	AddToShortlist      struct{ Listing domain.PropertyListing }
	RemoveFromShortlist struct{ PropertyID string }
	SetShortlist        struct{ Items []domain.PropertyListing }
	ClearShortlist      struct{}

	SetSearchLocation  struct{ Location domain.Location }
	SetSearchCategory  struct{ Category domain.PropertyCategory }
	SetSearchFilters   struct{ Filters domain.SearchFilters }
	ResetSearchFilters struct{}
	ResetSearch        struct{}

	SaveDraft struct {
		Kind  domain.DraftKind
		Draft domain.ListingDraft
	}
	ClearDraft struct{ Kind domain.DraftKind }
)

func (SetAuthenticated) actionName() string    { return "auth/setIsAuthenticated" }
func (SetAuthStep) actionName() string         { return "auth/setAuthStep" }
func (SetRedirectIntent) actionName() string   { return "auth/setRedirectIntent" }
func (ClearRedirectIntent) actionName() string { return "auth/clearRedirectIntent" }
func (Logout) actionName() string              { return "auth/logout" }
func (SetUserProfile) actionName() string      { return "user/setUserDetail" }
func (ClearUserProfile) actionName() string    { return "user/clearUserDetail" }
func (AddToShortlist) actionName() string      { return "shortlist/add" }
func (RemoveFromShortlist) actionName() string { return "shortlist/remove" }
func (SetShortlist) actionName() string        { return "shortlist/set" }
func (ClearShortlist) actionName() string      { return "shortlist/clear" }
func (SetSearchLocation) actionName() string   { return "propertySearch/setLocation" }
func (SetSearchCategory) actionName() string   { return "propertySearch/setCategory" }
func (SetSearchFilters) actionName() string    { return "propertySearch/setFilters" }
func (ResetSearchFilters) actionName() string  { return "propertySearch/resetFilters" }
func (ResetSearch) actionName() string         { return "propertySearch/reset" }
func (SaveDraft) actionName() string           { return "draft/save" }
func (ClearDraft) actionName() string          { return "draft/clear" }

// ActionName возвращает имя действия для логов.
func ActionName(a Action) string { return a.actionName() }
