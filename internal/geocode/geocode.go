// Package geocode searches venues through the AMAP place-text API and
// turns the results into usable coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/linkwed/linkwed/pkg/types"
)

const defaultEndpoint = "https://restapi.amap.com/v3/place/text"

var (
	ErrNoAPIKey  = errors.New("amap api key not configured")
	ErrNoResults = errors.New("no places found for query")
)

// Place is one venue candidate with parsed coordinates.
type Place struct {
	ID       string
	Name     string
	Address  string
	Location types.Coordinates
}

// Client queries the AMAP place search endpoint.
type Client struct {
	key      string
	endpoint string
	http     *http.Client
}

// NewClient creates a geocoding client. The key may be empty; Search
// then fails with ErrNoAPIKey.
func NewClient(key string) *Client {
	return &Client{key: key, endpoint: defaultEndpoint, http: &http.Client{}}
}

// WithEndpoint points the client at a different API base, used in tests.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

// flexString tolerates the AMAP habit of returning [] instead of "" for
// absent string fields.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	*f = ""
	return nil
}

type searchResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
	POIs   []struct {
		ID       flexString `json:"id"`
		Name     flexString `json:"name"`
		Address  flexString `json:"address"`
		Location flexString `json:"location"`
	} `json:"pois"`
}

// Search runs a place-text query. Results with unparseable coordinates
// are skipped; zero usable results is an error.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	if c.key == "" {
		return nil, ErrNoAPIKey
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoResults
	}

	params := url.Values{}
	params.Set("keywords", query)
	params.Set("key", c.key)
	params.Set("offset", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place search: unexpected status %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("place search: decode response: %w", err)
	}
	if body.Status != "1" {
		return nil, fmt.Errorf("place search rejected: %s", body.Info)
	}

	var places []Place
	for _, poi := range body.POIs {
		loc, ok := parseLocation(string(poi.Location))
		if !ok {
			continue
		}
		places = append(places, Place{
			ID:       string(poi.ID),
			Name:     string(poi.Name),
			Address:  string(poi.Address),
			Location: loc,
		})
	}
	if len(places) == 0 {
		return nil, ErrNoResults
	}
	return places, nil
}

// parseLocation parses the AMAP "lng,lat" form.
func parseLocation(s string) (types.Coordinates, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return types.Coordinates{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return types.Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return types.Coordinates{}, false
	}
	c := types.Coordinates{Lat: lat, Lng: lng}
	if !c.Valid() {
		return types.Coordinates{}, false
	}
	return c, true
}
