package listing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RateCardEntry is one priced dimension in a rate card, in the shape the
// Marketplace Catalog API uses on the wire.
type RateCardEntry struct {
	DimensionKey string
	Price        string
}

// RateCard is a keyed price-per-dimension table for one billing cadence.
// Keys are unique; insertion order is preserved so emitted payloads are
// reproducible across runs.
type RateCard struct {
	keys   []string
	prices map[string]string
}

// NewRateCard creates an empty rate card.
func NewRateCard() *RateCard {
	return &RateCard{prices: make(map[string]string)}
}

// RateCardFromEntries creates a rate card from wire entries, keeping their order.
func RateCardFromEntries(entries []RateCardEntry) *RateCard {
	r := NewRateCard()
	for _, e := range entries {
		r.Set(e.DimensionKey, e.Price)
	}
	return r
}

// Set adds or replaces the price for a dimension. A new dimension is
// appended at the end of the iteration order.
func (r *RateCard) Set(dimension, price string) {
	if _, ok := r.prices[dimension]; !ok {
		r.keys = append(r.keys, dimension)
	}
	r.prices[dimension] = price
}

// Get returns the price for a dimension and whether it exists.
func (r *RateCard) Get(dimension string) (string, bool) {
	if r == nil {
		return "", false
	}
	price, ok := r.prices[dimension]
	return price, ok
}

// Has reports whether the dimension is present.
func (r *RateCard) Has(dimension string) bool {
	_, ok := r.Get(dimension)
	return ok
}

// Keys returns the dimension keys in insertion order.
func (r *RateCard) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of dimensions.
func (r *RateCard) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Entries returns the wire entries in insertion order.
func (r *RateCard) Entries() []RateCardEntry {
	if r == nil {
		return nil
	}
	entries := make([]RateCardEntry, 0, len(r.keys))
	for _, k := range r.keys {
		entries = append(entries, RateCardEntry{DimensionKey: k, Price: r.prices[k]})
	}
	return entries
}

// Entry returns the wire entry for a dimension and whether it exists.
func (r *RateCard) Entry(dimension string) (RateCardEntry, bool) {
	price, ok := r.Get(dimension)
	return RateCardEntry{DimensionKey: dimension, Price: price}, ok
}

// MissingFrom returns the dimension keys of r that are absent from other,
// in r's insertion order.
func (r *RateCard) MissingFrom(other *RateCard) []string {
	var missing []string
	for _, k := range r.keys {
		if other == nil || !other.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Equal reports whether both cards price the same dimensions identically.
// Prices are compared by parsed numeric value, not string equality, so
// "0.0" and "0.000" are equal. Key order does not matter.
func (r *RateCard) Equal(other *RateCard) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r == nil {
		return true
	}
	for _, k := range r.keys {
		price, ok := other.Get(k)
		if !ok || !EqualPrice(r.prices[k], price) {
			return false
		}
	}
	return true
}

// MarshalJSON emits the card as an array of wire entries in insertion order.
func (r *RateCard) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Entries())
}

// UnmarshalJSON reads an array of wire entries, keeping their order.
func (r *RateCard) UnmarshalJSON(data []byte) error {
	var entries []RateCardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*r = *RateCardFromEntries(entries)
	return nil
}

// EqualPrice compares two decimal price strings by numeric value.
// Unparseable prices fall back to string comparison.
func EqualPrice(a, b string) bool {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return da.Equal(db)
}

// IsZeroPrice reports whether the price string parses to exactly zero.
func IsZeroPrice(p string) bool {
	d, err := decimal.NewFromString(p)
	if err != nil {
		return false
	}
	return d.IsZero()
}
