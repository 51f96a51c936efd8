package store

import "houseclay-client/internal/core/domain"

// State - снимок состояния клиента. Снимки не изменяются после публикации:
// редьюсеры всегда строят новые значения.
type State struct {
	Session   domain.Session
	User      *domain.UserProfile
	Shortlist domain.ShortlistSet
	Search    domain.SearchSelection
	Drafts    map[domain.DraftKind]domain.ListingDraft
}

// InitialState - состояние при первом запуске.
func InitialState() State {
	return State{
		Session: domain.NewSession(),
		Search:  domain.SearchSelection{Category: domain.CategoryRent},
		Drafts:  map[domain.DraftKind]domain.ListingDraft{},
	}
}

func reduce(s State, a Action) State {
	s.Session = reduceSession(s.Session, a)
	s.User = reduceUser(s.User, a)
	s.Shortlist = reduceShortlist(s.Shortlist, a)
	s.Search = reduceSearch(s.Search, a)
	s.Drafts = reduceDrafts(s.Drafts, a)
	return s
}

func reduceSession(s domain.Session, a Action) domain.Session {
	switch a := a.(type) {
	case SetAuthenticated:
		s.IsAuthenticated = a.Value
	case SetAuthStep:
		s.AuthStep = a.Step
		if a.Step == domain.AuthStepLoggedIn {
			s.IsAuthenticated = true
		}
	case SetRedirectIntent:
		s.RedirectIntent = a.Intent
	case ClearRedirectIntent:
		s.RedirectIntent = domain.RedirectNone
	case Logout:
		s = domain.NewSession()
	}
	return normalizeSession(s)
}

// normalizeSession: LOGGED_IN означает аутентифицированную сессию,
// а потеря аутентификации возвращает шаг в NONE.
func normalizeSession(s domain.Session) domain.Session {
	if s.AuthStep == "" {
		s.AuthStep = domain.AuthStepNone
	}
	if s.RedirectIntent == "" {
		s.RedirectIntent = domain.RedirectNone
	}
	if s.AuthStep == domain.AuthStepLoggedIn && !s.IsAuthenticated {
		s.AuthStep = domain.AuthStepNone
	}
	return s
}

func reduceUser(u *domain.UserProfile, a Action) *domain.UserProfile {
	switch a := a.(type) {
	case SetUserProfile:
		profile := a.Profile
		return &profile
	case ClearUserProfile, Logout:
		return nil
	}
	return u
}

func reduceShortlist(s domain.ShortlistSet, a Action) domain.ShortlistSet {
	switch a := a.(type) {
	case AddToShortlist:
		return s.With(a.Listing)
	case RemoveFromShortlist:
		return s.Without(a.PropertyID)
	case SetShortlist:
		return domain.NewShortlistSet(a.Items)
	case ClearShortlist, Logout:
		return domain.NewShortlistSet(nil)
	}
	return s
}

func reduceSearch(s domain.SearchSelection, a Action) domain.SearchSelection {
	switch a := a.(type) {
	case SetSearchLocation:
		s = s.WithLocation(a.Location)
	case SetSearchCategory:
		s.Category = a.Category
	case SetSearchFilters:
		s.Filters = a.Filters
	case ResetSearchFilters:
		s.Filters = domain.SearchFilters{}
	case ResetSearch:
		s = domain.SearchSelection{Category: domain.CategoryRent}
	}
	return s
}

func reduceDrafts(d map[domain.DraftKind]domain.ListingDraft, a Action) map[domain.DraftKind]domain.ListingDraft {
	switch a := a.(type) {
	case SaveDraft:
		next := copyDrafts(d)
		next[a.Kind] = a.Draft
		return next
	case ClearDraft:
		if _, ok := d[a.Kind]; !ok {
			return d
		}
		next := copyDrafts(d)
		delete(next, a.Kind)
		return next
	}
	return d
}

func copyDrafts(d map[domain.DraftKind]domain.ListingDraft) map[domain.DraftKind]domain.ListingDraft {
	next := make(map[domain.DraftKind]domain.ListingDraft, len(d)+1)
	for k, v := range d {
		next[k] = v
	}
	return next
}
