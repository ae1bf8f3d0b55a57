package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceValidate(t *testing.T) {
	assert.NoError(t, MustPrice("0.007").Validate("hourly"))
	assert.NoError(t, MustPrice("0").Validate("hourly"))
	assert.NoError(t, MustPrice("1177.344").Validate("yearly"))

	assert.Error(t, MustPrice("-0.01").Validate("hourly"))
	assert.Error(t, MustPrice("0.0001").Validate("hourly"))
}

func TestNewPriceRejectsGarbage(t *testing.T) {
	_, err := NewPrice("abc")
	require.Error(t, err)
}

func TestInstanceTypePricingValidate(t *testing.T) {
	annual := MustPrice("49.056")
	valid := InstanceTypePricing{Name: "m6i.xlarge", Hourly: MustPrice("0.007"), Annual: &annual}
	assert.NoError(t, valid.Validate())

	assert.Error(t, InstanceTypePricing{Hourly: MustPrice("0.007")}.Validate(), "missing name")

	cheapAnnual := MustPrice("0.001")
	cheaper := InstanceTypePricing{Name: "t2.nano", Hourly: MustPrice("0.002"), Annual: &cheapAnnual}
	assert.Error(t, cheaper.Validate(), "annual cheaper than hourly")
}

func TestRateCardsFromPricing(t *testing.T) {
	annual := MustPrice("49.056")
	pricing := []InstanceTypePricing{
		{Name: "m6i.xlarge", Hourly: MustPrice("0.007"), Annual: &annual},
		{Name: "t2.nano", Hourly: MustPrice("0.002")},
	}

	hourly, annualCard := RateCards(pricing)
	assert.Equal(t, []string{"m6i.xlarge", "t2.nano"}, hourly.Keys())
	require.NotNil(t, annualCard)
	assert.Equal(t, []string{"m6i.xlarge"}, annualCard.Keys())

	assert.Equal(t, []string{"m6i.xlarge", "t2.nano"}, InstanceTypeNames(pricing))
}

func TestRateCardsHourlyOnly(t *testing.T) {
	pricing := []InstanceTypePricing{{Name: "t2.nano", Hourly: MustPrice("0.002")}}
	_, annual := RateCards(pricing)
	assert.Nil(t, annual)
}
