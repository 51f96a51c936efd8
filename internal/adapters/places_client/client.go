package places_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

var ErrMissingAPIKey = errors.New("places API key is not configured")

// PlacesAPIClient - клиент Google Places: подсказки адресов и координаты места.
// Поиск ограничен Индией, ответы на английском.
type PlacesAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPlacesAPIClient(baseURL, apiKey string, timeout time.Duration) *PlacesAPIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &PlacesAPIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		PlaceID     string `json:"place_id"`
		Description string `json:"description"`
	} `json:"predictions"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

// doRequest выполняет GET и декодирует JSON-ответ в out.
func (c *PlacesAPIClient) doRequest(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	params.Set("key", c.apiKey)
	params.Set("language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("places API returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode places response: %w", err)
	}
	return nil
}

func statusError(status, message string) error {
	if message != "" {
		return fmt.Errorf("places API status %s: %s", status, message)
	}
	return fmt.Errorf("places API status %s", status)
}

// Autocomplete возвращает подсказки для введённого текста.
func (c *PlacesAPIClient) Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PlacesAPIClient",
		"method":    "Autocomplete",
	})

	input = strings.TrimSpace(input)
	if input == "" {
		return []domain.PlaceSuggestion{}, nil
	}

	params := url.Values{}
	params.Set("input", input)
	params.Set("components", "country:in")

	var apiResponse autocompleteResponse
	if err := c.doRequest(ctx, "/autocomplete/json", params, &apiResponse); err != nil {
		clientLogger.Error("Autocomplete request failed", err, nil)
		return nil, err
	}

	switch apiResponse.Status {
	case "OK", "ZERO_RESULTS":
	default:
		err := statusError(apiResponse.Status, apiResponse.ErrorMessage)
		clientLogger.Error("Autocomplete rejected", err, nil)
		return nil, err
	}

	suggestions := make([]domain.PlaceSuggestion, 0, len(apiResponse.Predictions))
	for _, p := range apiResponse.Predictions {
		suggestions = append(suggestions, domain.PlaceSuggestion{PlaceID: p.PlaceID, Description: p.Description})
	}
	clientLogger.Debug("Autocomplete finished", port.Fields{"suggestions": len(suggestions)})
	return suggestions, nil
}

// Resolve получает координаты выбранного места.
func (c *PlacesAPIClient) Resolve(ctx context.Context, placeID string) (domain.Location, error) {
	if placeID == "" {
		return domain.Location{}, fmt.Errorf("place id is required")
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,formatted_address,geometry")

	var apiResponse detailsResponse
	if err := c.doRequest(ctx, "/details/json", params, &apiResponse); err != nil {
		return domain.Location{}, err
	}
	if apiResponse.Status != "OK" {
		return domain.Location{}, statusError(apiResponse.Status, apiResponse.ErrorMessage)
	}

	name := apiResponse.Result.FormattedAddress
	if name == "" {
		name = apiResponse.Result.Name
	}
	loc := domain.Location{
		Name:      name,
		Latitude:  apiResponse.Result.Geometry.Location.Lat,
		Longitude: apiResponse.Result.Geometry.Location.Lng,
	}
	if !loc.Valid() {
		return domain.Location{}, fmt.Errorf("place %s has invalid coordinates", placeID)
	}
	contextkeys.LoggerFromContext(ctx).Debug("Place resolved", port.Fields{
		"component": "PlacesAPIClient",
		"geohash":   loc.Cell(),
	})
	return loc, nil
}
