package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// nominatimTimeout bounds each lookup; the search pipeline treats a timeout
// the same as not-found, so a slow resolver can only cost this much latency.
const nominatimTimeout = 5 * time.Second

// NominatimResolver resolves pincodes against the OSM Nominatim API.
//
// Nominatim's usage policy allows at most one request per second, enforced
// here with a client-side limiter shared across all requests. The bounded
// cache in front of this resolver keeps the limiter off the hot path.
type NominatimResolver struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

var _ Resolver = (*NominatimResolver)(nil)

// NewNominatimResolver creates a resolver. baseURL is optional; empty means
// the public Nominatim instance.
func NewNominatimResolver(baseURL string) *NominatimResolver {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	return &NominatimResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: nominatimTimeout},
		limiter: rate.NewLimiter(1, 1),
	}
}

// nominatimResult is the subset of a Nominatim search result we consume.
type nominatimResult struct {
	Address struct {
		Village       string `json:"village"`
		Town          string `json:"town"`
		City          string `json:"city"`
		CityDistrict  string `json:"city_district"`
		StateDistrict string `json:"state_district"`
		State         string `json:"state"`
		Country       string `json:"country"`
	} `json:"address"`
}

// Resolve looks up a pincode. The first result's address wins.
func (r *NominatimResolver) Resolve(ctx context.Context, pincode string) (*Address, error) {
	if !IsValidPincode(pincode) {
		return nil, ErrInvalidPincode
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("postalcode", pincode)
	q.Set("countrycodes", "in")
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// Nominatim rejects requests without an identifying User-Agent.
	req.Header.Set("User-Agent", "news-search-service")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("nominatim decode: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	addr := results[0].Address
	return &Address{
		Village:       addr.Village,
		Town:          addr.Town,
		City:          addr.City,
		CityDistrict:  addr.CityDistrict,
		StateDistrict: addr.StateDistrict,
		State:         addr.State,
		Country:       addr.Country,
	}, nil
}
