package api_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchPage(t *testing.T, from, to int, page int, hasNext bool, total int) string {
	t.Helper()
	items := make([]domain.PropertyListing, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, domain.PropertyListing{PropertyID: fmt.Sprintf("p-%d", i), PropertyCategory: domain.CategoryRent})
	}
	data, err := json.Marshal(domain.SearchResultPage{Items: items, HasNext: hasNext, Page: page, TotalElements: total})
	require.NoError(t, err)
	return string(data)
}

func searchRoutes(t *testing.T) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/api/property/search", func(w http.ResponseWriter, r *http.Request) {
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			switch {
			case r.URL.Query().Get("bhkType") != "":
				writeJSON(w, http.StatusOK, searchPage(t, 100, 104, 0, false, 4))
			case page == 0:
				writeJSON(w, http.StatusOK, searchPage(t, 0, 16, 0, true, 26))
			default:
				writeJSON(w, http.StatusOK, searchPage(t, 16, 26, 1, false, 26))
			}
		})
	}
}

var bangalore = domain.SearchQuery{Latitude: 12.9716, Longitude: 77.5946, PropertyCategory: domain.CategoryRent}

func TestSearchAccumulatesPages(t *testing.T) {
	h := newHarness(t, searchRoutes(t))
	ctx := context.Background()

	first, err := h.client.SearchProperties(ctx, bangalore, port.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, first.Items, 16)
	assert.True(t, first.HasNext)

	q := h.backend.LastCall().URL.Query()
	assert.Equal(t, "12.9716", q.Get("lat"))
	assert.Equal(t, "77.5946", q.Get("lon"))
	assert.Equal(t, "RENT", q.Get("propertyCategory"))
	assert.Equal(t, "16", q.Get("size"))

	merged, err := h.client.SearchProperties(ctx, bangalore.WithPage(1), port.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, merged.Items, 26)
	assert.False(t, merged.HasNext)
	assert.Equal(t, 1, merged.Page)

	seen := map[string]bool{}
	for _, item := range merged.Items {
		assert.False(t, seen[item.PropertyID], "duplicate %s", item.PropertyID)
		seen[item.PropertyID] = true
	}

	cached, ok := h.client.CachedSearch(bangalore)
	require.True(t, ok)
	assert.Len(t, cached.Items, 26, "page 0 and page 1 share one cache entry")
}

func TestSearchServesCacheForSameArgs(t *testing.T) {
	h := newHarness(t, searchRoutes(t))
	ctx := context.Background()

	_, err := h.client.SearchProperties(ctx, bangalore, port.SearchOptions{})
	require.NoError(t, err)
	_, err = h.client.SearchProperties(ctx, bangalore, port.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, h.backend.Hits("GET /api/property/search"))

	_, err = h.client.SearchProperties(ctx, bangalore, port.SearchOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, h.backend.Hits("GET /api/property/search"))
}

func TestSearchFilterChangeIsNewIdentity(t *testing.T) {
	h := newHarness(t, searchRoutes(t))
	ctx := context.Background()

	_, err := h.client.SearchProperties(ctx, bangalore, port.SearchOptions{})
	require.NoError(t, err)
	_, err = h.client.SearchProperties(ctx, bangalore.WithPage(1), port.SearchOptions{})
	require.NoError(t, err)

	filtered := bangalore
	filtered.Filters.BHKType = "BHK_2"
	page, err := h.client.SearchProperties(ctx, filtered, port.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	assert.Equal(t, "p-100", page.Items[0].PropertyID)

	old, ok := h.client.CachedSearch(bangalore)
	require.True(t, ok)
	assert.Len(t, old.Items, 26, "old identity is left untouched")
}

func TestSearchEntryEvictedAfterKeepUnusedFor(t *testing.T) {
	h := newHarness(t, searchRoutes(t))
	ctx := context.Background()

	_, err := h.client.SearchProperties(ctx, bangalore, port.SearchOptions{})
	require.NoError(t, err)

	release := h.client.RetainSearch(bangalore)
	h.clock.Advance(2 * DefaultKeepUnusedFor)
	_, err = h.client.SearchProperties(ctx, bangalore, port.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, h.backend.Hits("GET /api/property/search"), "retained entry survives")

	release()
	h.clock.Advance(DefaultKeepUnusedFor + time.Second)
	_, err = h.client.SearchProperties(ctx, bangalore, port.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, h.backend.Hits("GET /api/property/search"))
}

func TestShortlistMutationInvalidatesTag(t *testing.T) {
	h := newHarness(t, func(r chi.Router) {
		r.Get("/api/property/user/shortlisted-properties", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"shortlistedProperties":[{"propertyID":"p-1"}]}`)
		})
		r.Post("/api/property/user/shortlist-property/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"status":200}`)
		})
	})
	ctx := context.Background()

	items, err := h.client.ListShortlisted(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	_, err = h.client.ListShortlisted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.backend.Hits("GET /api/property/user/shortlisted-properties"))

	require.NoError(t, h.client.AddToShortlist(ctx, "p-2"))
	assert.Equal(t, 1, h.backend.Hits("POST /api/property/user/shortlist-property/p-2"))

	_, err = h.client.ListShortlisted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, h.backend.Hits("GET /api/property/user/shortlisted-properties"))
}

func TestCheckUserTreatsNotFoundAsNewUser(t *testing.T) {
	h := newHarness(t, func(r chi.Router) {
		r.Get("/api/user/check-user", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("phoneNo") == "+919876543210" {
				writeJSON(w, http.StatusOK, `{"exists":true,"message":"ok"}`)
				return
			}
			writeJSON(w, http.StatusNotFound, `{"message":"User not found"}`)
		})
	})
	ctx := context.Background()

	known, err := h.client.CheckUser(ctx, "+919876543210")
	require.NoError(t, err)
	assert.True(t, known)

	known, err = h.client.CheckUser(ctx, "+919999999999")
	require.NoError(t, err)
	assert.False(t, known)
	assert.Empty(t, h.navigator.Redirects())
}

func TestLoginPlainTextIsFailure(t *testing.T) {
	h := newHarness(t, func(r chi.Router) {
		r.Post("/api/user/login", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("Invalid OTP Code"))
		})
	})

	_, err := h.client.Login(context.Background(), "+919876543210", "0000")
	require.Error(t, err)
	assert.Equal(t, "Invalid OTP Code", domain.NormalizeError(err))
}

func TestPropertyDetailEnvelope(t *testing.T) {
	h := newHarness(t, func(r chi.Router) {
		r.Get("/api/property/user/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"property":{"property":{"propertyID":"42","city":"Pune"},"viewUserCount":9,"shortlistUserCount":2},"owner":{"name":"Ravi"},"reported":false,"propertyOwner":true}`)
		})
		r.Get("/api/property/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"propertyID":"42","city":"Pune"}`)
		})
	})
	ctx := context.Background()

	mine, err := h.client.GetMyProperty(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Pune", mine.Listing.City)
	assert.Equal(t, 9, mine.ViewUserCount)
	assert.True(t, mine.PropertyOwner)
	require.NotNil(t, mine.Owner)
	assert.Equal(t, "Ravi", mine.Owner.Name)

	public, err := h.client.GetPublicProperty(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", public.Listing.PropertyID)
	assert.Nil(t, public.Owner)
}

func TestQueryCacheLastFetchWins(t *testing.T) {
	h := newHarness(t, func(chi.Router) {})
	c := h.client.cache
	replace := func(v string) func(any, bool) any { return func(any, bool) any { return v } }

	older := c.begin("k")
	newer := c.begin("k")

	data, applied := c.apply("k", applyOptions{seq: newer, merge: replace("newer")})
	require.True(t, applied)
	assert.Equal(t, "newer", data)

	data, applied = c.apply("k", applyOptions{seq: older, merge: replace("older")})
	assert.False(t, applied)
	assert.Equal(t, "newer", data)

	stale := c.begin("k")
	c.reset()
	_, applied = c.apply("k", applyOptions{seq: stale, merge: replace("before reset")})
	assert.False(t, applied)
}

func TestListingSubmissionInvalidatesUserTag(t *testing.T) {
	var bodies []map[string]any
	h := newHarness(t, func(r chi.Router) {
		r.Get("/api/property/user/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"propertyID":"`+chi.URLParam(r, "id")+`","city":"Pune"}`)
		})
		submit := func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			bodies = append(bodies, body)
			writeJSON(w, http.StatusOK, `{"message":"Property saved","propertyID":77}`)
		}
		r.Post("/api/property/user/add", submit)
		r.Put("/api/property/user/update", submit)
	})
	ctx := context.Background()

	_, err := h.client.GetMyProperty(ctx, "42")
	require.NoError(t, err)
	_, err = h.client.GetMyProperty(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, 1, h.backend.Hits("GET /api/property/user/42"))

	added, err := h.client.AddProperty(ctx, domain.ListingDraft{
		Category: domain.CategoryRent,
		Fields:   map[string]string{"rent": "25000", "locality": "Baner"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SubmittedListing{Message: "Property saved", PropertyID: "77"}, added)
	assert.Equal(t, "application/json", h.backend.LastCall().Header.Get("Content-Type"))

	_, err = h.client.GetMyProperty(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 2, h.backend.Hits("GET /api/property/user/42"))

	_, err = h.client.UpdateProperty(ctx, domain.ListingDraft{Category: domain.CategoryRent, PropertyID: "42", Fields: map[string]string{"rent": "27000"}})
	require.NoError(t, err)
	_, err = h.client.GetMyProperty(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 3, h.backend.Hits("GET /api/property/user/42"))

	require.Len(t, bodies, 2)
	assert.Equal(t, float64(25000), bodies[0]["rent"])
	assert.Equal(t, "RENT", bodies[0]["propertyCategory"])
	assert.NotContains(t, bodies[0], "propertyID")
	assert.Equal(t, "42", bodies[1]["propertyID"])
}

func TestFailedSubmissionKeepsCache(t *testing.T) {
	h := newHarness(t, func(r chi.Router) {
		r.Get("/api/property/user/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"propertyID":"42"}`)
		})
		r.Post("/api/property/user/add", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"message":"Rent is required"}`)
		})
	})
	ctx := context.Background()

	_, err := h.client.GetMyProperty(ctx, "42")
	require.NoError(t, err)

	_, err = h.client.AddProperty(ctx, domain.ListingDraft{Category: domain.CategoryRent, Fields: map[string]string{"locality": "Baner"}})
	require.Error(t, err)
	assert.Equal(t, "Rent is required", domain.NormalizeError(err))

	_, err = h.client.GetMyProperty(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 1, h.backend.Hits("GET /api/property/user/42"))
}

func TestContactOwnerIsNeverCached(t *testing.T) {
	h := newHarness(t, func(r chi.Router) {
		r.Get("/api/property/user/contact/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"owner":{"name":"Ravi","phoneNo":"+919812345678","emailID":"ravi@example.com"},"connectBal":4}`)
		})
	})
	ctx := context.Background()

	result, err := h.client.ContactOwner(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", result.Owner.Name)
	assert.Equal(t, "+919812345678", result.Owner.PhoneNo)
	assert.Equal(t, 4, result.ConnectBal)

	_, err = h.client.ContactOwner(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 2, h.backend.Hits("GET /api/property/user/contact/42"))
}
