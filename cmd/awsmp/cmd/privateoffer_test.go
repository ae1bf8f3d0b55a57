package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/awsmp/pkg/errors"
)

func TestReadPricingCSV(t *testing.T) {
	pricing, err := readPricingCSV(strings.NewReader(
		"m5.large,0.1,876\nm5.xlarge,0.2,\nc5.large,0.05,438\n"))
	require.NoError(t, err)
	require.Len(t, pricing, 3)

	assert.Equal(t, "m5.large", pricing[0].Name)
	assert.Equal(t, "0.1", pricing[0].Hourly.String())
	require.NotNil(t, pricing[0].Annual)
	assert.Equal(t, "876", pricing[0].Annual.String())

	assert.Nil(t, pricing[1].Annual)
}

func TestReadPricingCSVTwoColumns(t *testing.T) {
	pricing, err := readPricingCSV(strings.NewReader("m5.large,0.1\n"))
	require.NoError(t, err)
	require.Len(t, pricing, 1)
	assert.Nil(t, pricing[0].Annual)
}

func TestReadPricingCSVInvalid(t *testing.T) {
	for name, input := range map[string]string{
		"missing price":  "m5.large\n",
		"garbage price":  "m5.large,cheap\n",
		"negative price": "m5.large,-0.1\n",
		"empty name":     ",0.1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := readPricingCSV(strings.NewReader(input))
			assert.True(t, errors.Is(err, errors.ErrInvalidInput), "input %q", input)
		})
	}
}

func TestBuildOfferName(t *testing.T) {
	name := buildOfferName("Ubuntu 24.04 LTS", []string{"123456789012"}, false, "Acme")
	assert.Equal(t, "Offer - 123456789012 - Ubuntu 24.04 LTS - Acme", name)

	name = buildOfferName("Ubuntu 24.04 LTS", []string{"123456789012"}, true, "Acme")
	assert.Contains(t, name, " wSupport - Acme")
}

func TestBuildOfferNameTruncatesAccounts(t *testing.T) {
	accounts := []string{
		"111111111111", "222222222222", "333333333333", "444444444444", "555555555555",
	}
	name := buildOfferName("Ubuntu", accounts, false, "Acme")
	assert.Contains(t, name, "...")
	assert.NotContains(t, name, "555555555555")
}

func TestBuildOfferNameLengthLimit(t *testing.T) {
	name := buildOfferName(strings.Repeat("x", 200), []string{"123456789012"}, false, "Acme")
	assert.Len(t, name, 150)
}
