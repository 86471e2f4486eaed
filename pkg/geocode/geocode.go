// Package geocode expands Indian postal codes (pincodes) into place-name
// terms used to re-rank search results.
package geocode

import (
	"context"
	"errors"
	"regexp"
)

var (
	// ErrNotFound means the pincode is well-formed but resolves to no location.
	ErrNotFound = errors.New("geocode: no location found for pincode")
	// ErrInvalidPincode means the input is not a 6-digit pincode.
	ErrInvalidPincode = errors.New("geocode: invalid pincode")
)

var (
	pincodeExactRe = regexp.MustCompile(`^[0-9]{6}$`)
	pincodeTokenRe = regexp.MustCompile(`\b([0-9]{6})\b`)
)

// IsValidPincode reports whether s is exactly 6 ASCII digits.
func IsValidPincode(s string) bool {
	return pincodeExactRe.MatchString(s)
}

// ExtractPincode returns the first word-boundary-delimited 6-digit token in
// query. First match wins when the query contains several.
func ExtractPincode(query string) (string, bool) {
	m := pincodeTokenRe.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Address is the resolved location for a pincode. Fields are ordered
// most-specific first; empty fields mean the resolver had no value for them.
type Address struct {
	Village       string `json:"village"`
	Town          string `json:"town"`
	City          string `json:"city"`
	CityDistrict  string `json:"city_district"`
	StateDistrict string `json:"state_district"`
	State         string `json:"state"`
	Country       string `json:"country"`
}

// Terms returns the non-empty address fields, most-specific first. The order
// drives re-ranking priority: a village match outranks a state match.
func (a *Address) Terms() []string {
	if a == nil {
		return nil
	}
	fields := []string{a.Village, a.Town, a.City, a.CityDistrict, a.StateDistrict, a.State, a.Country}
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}

// Resolver turns a pincode into an Address. Implementations must be safe for
// concurrent use. Resolve returns ErrNotFound when the pincode has no known
// location and ErrInvalidPincode when it is malformed.
type Resolver interface {
	Resolve(ctx context.Context, pincode string) (*Address, error)
}
