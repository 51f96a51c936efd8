package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/store"
)

type memoryPersister struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   map[string]int
	deletes map[string]int
	failOn  string
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{data: map[string][]byte{}, saves: map[string]int{}, deletes: map[string]int{}}
}

func (m *memoryPersister) Load(context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

func (m *memoryPersister) Save(_ context.Context, slice string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slice == m.failOn {
		return errors.New("disk full")
	}
	m.data[slice] = append([]byte(nil), payload...)
	m.saves[slice]++
	return nil
}

func (m *memoryPersister) Delete(_ context.Context, slice string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, slice)
	m.deletes[slice]++
	return nil
}

func (m *memoryPersister) Close() error { return nil }

func listing(id string) domain.PropertyListing {
	return domain.PropertyListing{PropertyID: id, PropertyCategory: domain.CategoryRent}
}

func TestSessionTransitions(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(nil)
	require.NoError(t, err)

	require.NoError(t, s.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepPhone}))
	assert.Equal(t, domain.AuthStepPhone, s.State().Session.AuthStep)
	assert.False(t, s.State().Session.IsAuthenticated)

	require.NoError(t, s.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepLoggedIn}))
	assert.True(t, s.State().Session.IsAuthenticated)

	require.NoError(t, s.Dispatch(ctx, store.SetAuthenticated{Value: false}))
	assert.Equal(t, domain.AuthStepNone, s.State().Session.AuthStep, "LOGGED_IN without authentication is not kept")
}

func TestLogoutClearsUserAndShortlist(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(nil)
	require.NoError(t, err)

	require.NoError(t, s.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepLoggedIn}))
	require.NoError(t, s.Dispatch(ctx, store.SetRedirectIntent{Intent: domain.RedirectFromAddProperty}))
	require.NoError(t, s.Dispatch(ctx, store.SetUserProfile{Profile: domain.UserProfile{Name: "Asha", PhoneNo: "+919876543210"}}))
	require.NoError(t, s.Dispatch(ctx, store.AddToShortlist{Listing: listing("p1")}))

	require.NoError(t, s.Dispatch(ctx, store.Logout{}))

	st := s.State()
	assert.Equal(t, domain.NewSession(), st.Session)
	assert.Nil(t, st.User)
	assert.Zero(t, st.Shortlist.Len())
}

func TestShortlistActionsKeepIdsUnique(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(nil)
	require.NoError(t, err)

	require.NoError(t, s.Dispatch(ctx, store.AddToShortlist{Listing: listing("p1")}))
	require.NoError(t, s.Dispatch(ctx, store.AddToShortlist{Listing: listing("p1")}))
	require.NoError(t, s.Dispatch(ctx, store.AddToShortlist{Listing: listing("p2")}))
	assert.Equal(t, 2, s.State().Shortlist.Len())

	require.NoError(t, s.Dispatch(ctx, store.RemoveFromShortlist{PropertyID: "p1"}))
	assert.False(t, s.State().Shortlist.Contains("p1"))
	assert.True(t, s.State().Shortlist.Contains("p2"))
}

func TestDispatchPersistsOnlyChangedSlices(t *testing.T) {
	ctx := context.Background()
	p := newMemoryPersister()
	s, err := store.New(p)
	require.NoError(t, err)

	require.NoError(t, s.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepPhone}))
	assert.Equal(t, 1, p.saves["auth"])
	assert.Equal(t, 1, p.saves["shortlist"])
	assert.NotContains(t, p.data, "user")

	require.NoError(t, s.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepOTP}))
	assert.Equal(t, 2, p.saves["auth"])
	assert.Equal(t, 1, p.saves["shortlist"], "unchanged slice is not rewritten")

	require.NoError(t, s.Dispatch(ctx, store.SetUserProfile{Profile: domain.UserProfile{Name: "Asha", PhoneNo: "+919876543210"}}))
	assert.Contains(t, p.data, "user")

	require.NoError(t, s.Dispatch(ctx, store.ClearUserProfile{}))
	assert.NotContains(t, p.data, "user")
	assert.Equal(t, 1, p.deletes["user"])
}

func TestDispatchReportsPersistFailureButKeepsState(t *testing.T) {
	ctx := context.Background()
	p := newMemoryPersister()
	p.failOn = "auth"
	s, err := store.New(p)
	require.NoError(t, err)

	err = s.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepPhone})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, domain.AuthStepPhone, s.State().Session.AuthStep)
}

func TestRehydrateRestoresValidSlices(t *testing.T) {
	ctx := context.Background()
	p := newMemoryPersister()
	first, err := store.New(p)
	require.NoError(t, err)

	require.NoError(t, first.Dispatch(ctx, store.SetAuthStep{Step: domain.AuthStepLoggedIn}))
	require.NoError(t, first.Dispatch(ctx, store.SetUserProfile{Profile: domain.UserProfile{Name: "Asha", PhoneNo: "+919876543210", ConnectBal: 3}}))
	require.NoError(t, first.Dispatch(ctx, store.AddToShortlist{Listing: listing("p9")}))
	require.NoError(t, first.Dispatch(ctx, store.SetSearchLocation{Location: domain.Location{Name: "Indiranagar", Latitude: 12.97, Longitude: 77.64}}))
	require.NoError(t, first.Dispatch(ctx, store.SaveDraft{Kind: domain.DraftListProperty, Draft: domain.ListingDraft{
		Category: domain.CategoryResale,
		Step:     2,
		Fields:   map[string]string{"bhkType": "2BHK"},
	}}))

	second, err := store.New(p)
	require.NoError(t, err)
	require.NoError(t, second.Rehydrate(ctx))

	st := second.State()
	assert.True(t, st.Session.IsAuthenticated)
	assert.Equal(t, domain.AuthStepLoggedIn, st.Session.AuthStep)
	require.NotNil(t, st.User)
	assert.Equal(t, 3, st.User.ConnectBal)
	assert.True(t, st.Shortlist.Contains("p9"))
	assert.Equal(t, "Indiranagar", st.Search.Location.Name)
	assert.Equal(t, "2BHK", st.Drafts[domain.DraftListProperty].Fields["bhkType"])
}

func TestRehydrateDropsInvalidSlices(t *testing.T) {
	ctx := context.Background()
	p := newMemoryPersister()
	p.data["auth"] = []byte(`{"isAuthenticated":"yes","authStep":"LOGGED_IN"}`)
	p.data["shortlist"] = []byte(`{"items":[{"propertyID":""}]}`)
	p.data["cookies"] = []byte(`[]`)
	user, err := json.Marshal(domain.UserProfile{Name: "Ravi", PhoneNo: "+919000000000"})
	require.NoError(t, err)
	p.data["user"] = user

	s, err := store.New(p)
	require.NoError(t, err)
	require.NoError(t, s.Rehydrate(ctx))

	st := s.State()
	assert.Equal(t, domain.NewSession(), st.Session)
	assert.Zero(t, st.Shortlist.Len())
	require.NotNil(t, st.User)
	assert.Equal(t, "Ravi", st.User.Name)
}

func TestRehydrateNormalizesUnauthenticatedLoggedIn(t *testing.T) {
	ctx := context.Background()
	p := newMemoryPersister()
	p.data["auth"] = []byte(`{"isAuthenticated":false,"authStep":"LOGGED_IN","redirectIntent":"NONE"}`)

	s, err := store.New(p)
	require.NoError(t, err)
	require.NoError(t, s.Rehydrate(ctx))

	assert.Equal(t, domain.AuthStepNone, s.State().Session.AuthStep)
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(nil)
	require.NoError(t, err)

	var seen []bool
	unsubscribe := s.Subscribe(func(prev, next store.State) {
		seen = append(seen, next.Session.IsAuthenticated)
	})

	require.NoError(t, s.Dispatch(ctx, store.SetAuthenticated{Value: true}))
	unsubscribe()
	require.NoError(t, s.Dispatch(ctx, store.SetAuthenticated{Value: false}))

	assert.Equal(t, []bool{true}, seen)
}

func TestListenerMayDispatch(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(nil)
	require.NoError(t, err)

	s.Subscribe(func(prev, next store.State) {
		if prev.Session.IsAuthenticated && !next.Session.IsAuthenticated {
			_ = s.Dispatch(ctx, store.ClearShortlist{})
		}
	})

	require.NoError(t, s.Dispatch(ctx, store.SetAuthenticated{Value: true}))
	require.NoError(t, s.Dispatch(ctx, store.AddToShortlist{Listing: listing("p1")}))
	require.NoError(t, s.Dispatch(ctx, store.SetAuthenticated{Value: false}))

	assert.Zero(t, s.State().Shortlist.Len())
}

func TestMovingToAnotherAreaResetsFilters(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(nil)
	require.NoError(t, err)

	require.NoError(t, s.Dispatch(ctx, store.SetSearchLocation{Location: domain.Location{Name: "Indiranagar", Latitude: 12.9719, Longitude: 77.6412}}))
	require.NoError(t, s.Dispatch(ctx, store.SetSearchCategory{Category: domain.CategoryResale}))
	require.NoError(t, s.Dispatch(ctx, store.SetSearchFilters{Filters: domain.SearchFilters{BHKType: "3BHK"}}))

	require.NoError(t, s.Dispatch(ctx, store.SetSearchLocation{Location: domain.Location{Name: "Indiranagar Metro", Latitude: 12.9719, Longitude: 77.6412}}))
	assert.Equal(t, "3BHK", s.State().Search.Filters.BHKType)

	require.NoError(t, s.Dispatch(ctx, store.SetSearchLocation{Location: domain.Location{Name: "Whitefield", Latitude: 12.9698, Longitude: 77.7500}}))
	assert.Equal(t, domain.SearchFilters{}, s.State().Search.Filters)
	assert.Equal(t, domain.CategoryResale, s.State().Search.Category)
}
