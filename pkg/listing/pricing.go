package listing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/canonical/awsmp/pkg/errors"
)

// maxPriceScale is the maximum number of fractional digits the marketplace
// accepts for hourly and annual prices.
const maxPriceScale = 3

// Price is a non-negative fixed-point price with at most three fractional
// digits. It decodes from YAML scalars whether quoted or not.
type Price struct {
	decimal.Decimal
}

// NewPrice parses a price from its decimal string form.
func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Price{}, errors.NewValidationError("price", s, "not a decimal value")
	}
	return Price{d}, nil
}

// MustPrice parses a price and panics on malformed input. For tests and
// compile-time constants only.
func MustPrice(s string) Price {
	p, err := NewPrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// UnmarshalYAML implements yaml.BytesUnmarshaler for goccy/go-yaml.
func (p *Price) UnmarshalYAML(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"'`)
	parsed, err := NewPrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Validate enforces the non-negative value and precision invariants.
func (p Price) Validate(field string) error {
	if p.IsNegative() {
		return errors.NewValidationError(field, p.String(), "price must not be negative")
	}
	if p.Exponent() < -maxPriceScale {
		return errors.NewValidationError(field, p.String(),
			fmt.Sprintf("price must have at most %d decimal places", maxPriceScale))
	}
	return nil
}

// InstanceTypePricing is the hourly (and optional annual) price for one
// instance type dimension.
type InstanceTypePricing struct {
	Name   string `yaml:"name"`
	Hourly Price  `yaml:"hourly"`
	Annual *Price `yaml:"yearly"`
}

// Validate checks the pricing invariants for a single instance type.
func (i InstanceTypePricing) Validate() error {
	if i.Name == "" {
		return errors.NewValidationError("instance_types.name", i.Name, "instance type name is required")
	}
	if err := i.Hourly.Validate("instance_types.hourly"); err != nil {
		return err
	}
	if i.Annual != nil {
		if err := i.Annual.Validate("instance_types.yearly"); err != nil {
			return err
		}
		// An annual contract must not be cheaper than a single hour.
		if i.Annual.Cmp(i.Hourly.Decimal) < 0 {
			return errors.NewValidationError("instance_types.yearly", i.Annual.String(),
				fmt.Sprintf("annual price is lower than the hourly price %s for %s", i.Hourly, i.Name))
		}
	}
	return nil
}

// RateCards builds the full replacement hourly and annual rate cards from
// a desired pricing list. The annual card is nil when no entry carries an
// annual price.
func RateCards(pricing []InstanceTypePricing) (hourly, annual *RateCard) {
	hourly = NewRateCard()
	for _, p := range pricing {
		hourly.Set(p.Name, p.Hourly.String())
		if p.Annual != nil {
			if annual == nil {
				annual = NewRateCard()
			}
			annual.Set(p.Name, p.Annual.String())
		}
	}
	return hourly, annual
}

// InstanceTypeNames returns the dimension names of a desired pricing list,
// in declaration order.
func InstanceTypeNames(pricing []InstanceTypePricing) []string {
	names := make([]string, 0, len(pricing))
	for _, p := range pricing {
		names = append(names, p.Name)
	}
	return names
}
