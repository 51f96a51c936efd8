package places_client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"houseclay-client/internal/adapters/places_client"
)

func newPlacesServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/autocomplete/json", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "country:in", q.Get("components"))
		assert.Equal(t, "en", q.Get("language"))

		if q.Get("input") == "denied" {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "REQUEST_DENIED", "error_message": "bad key"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"predictions": []map[string]any{
				{"place_id": "abc", "description": "Indiranagar, Bengaluru, Karnataka, India"},
				{"place_id": "def", "description": "Indiranagar, Lucknow, Uttar Pradesh, India"},
			},
		})
	})
	r.Get("/details/json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.URL.Query().Get("place_id"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"result": map[string]any{
				"name":              "Indiranagar",
				"formatted_address": "Indiranagar, Bengaluru",
				"geometry":          map[string]any{"location": map[string]any{"lat": 12.9719, "lng": 77.6412}},
			},
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestAutocomplete(t *testing.T) {
	srv := newPlacesServer(t)
	client := places_client.NewPlacesAPIClient(srv.URL, "test-key", time.Second)

	suggestions, err := client.Autocomplete(context.Background(), "indira")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "abc", suggestions[0].PlaceID)

	empty, err := client.Autocomplete(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = client.Autocomplete(context.Background(), "denied")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestResolve(t *testing.T) {
	srv := newPlacesServer(t)
	client := places_client.NewPlacesAPIClient(srv.URL, "test-key", time.Second)

	loc, err := client.Resolve(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Indiranagar, Bengaluru", loc.Name)
	assert.InDelta(t, 12.9719, loc.Latitude, 1e-9)
	assert.InDelta(t, 77.6412, loc.Longitude, 1e-9)
}

func TestMissingKey(t *testing.T) {
	client := places_client.NewPlacesAPIClient("http://127.0.0.1:0", "", time.Second)
	_, err := client.Autocomplete(context.Background(), "indira")
	assert.ErrorIs(t, err, places_client.ErrMissingAPIKey)
}
