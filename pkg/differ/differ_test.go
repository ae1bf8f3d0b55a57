package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/awsmp/pkg/listing"
)

func card(pairs ...string) *listing.RateCard {
	c := listing.NewRateCard()
	for i := 0; i < len(pairs); i += 2 {
		c.Set(pairs[i], pairs[i+1])
	}
	return c
}

func snapshot() *listing.EntitySnapshot {
	return &listing.EntitySnapshot{
		Description: listing.Description{
			ProductTitle:     "Ubuntu 24.04 LTS",
			ShortDescription: "Ubuntu Server",
			LongDescription:  "Ubuntu Server with long term support.",
			Sku:              "ubuntu-2404",
			Highlights:       []string{"x", "y"},
			SearchKeywords:   []string{"ubuntu", "linux"},
			Categories:       []string{"Operating Systems"},
		},
		PromotionalResources: listing.PromotionalResources{
			LogoURL: "https://example.com/logo.png",
			AdditionalResources: []listing.Resource{
				{Text: "Documentation", URL: "https://example.com/docs"},
			},
		},
		SupportInformation: listing.SupportInformation{
			Description: "Community support.",
		},
		RegionAvailability: listing.RegionAvailability{
			Regions:             []string{"us-east-1", "eu-west-1"},
			FutureRegionSupport: "All",
		},
		Terms: listing.Terms{
			&listing.SupportTerm{RefundPolicy: "No refunds."},
			&listing.UsageTerm{CurrencyCode: listing.CurrencyUSD, RateCard: card("a", "0.004", "b", "0.007")},
		},
	}
}

func TestDiffIdenticalSnapshotsIsEmpty(t *testing.T) {
	report := Diff(snapshot(), snapshot())
	assert.True(t, report.Empty())
	assert.NotNil(t, report.Added)
	assert.NotNil(t, report.Removed)
	assert.NotNil(t, report.Changed)
}

func TestDiffScalarChange(t *testing.T) {
	desired := snapshot()
	desired.Description.ProductTitle = "Ubuntu 26.04 LTS"

	report := Diff(snapshot(), desired)
	require.Len(t, report.Changed, 1)
	assert.Equal(t, "ProductTitle", report.Changed[0].Name)
	assert.Equal(t, "Ubuntu 24.04 LTS", report.Changed[0].OldValue)
	assert.Equal(t, "Ubuntu 26.04 LTS", report.Changed[0].NewValue)
}

func TestDiffEmptyToNonEmptyIsAdded(t *testing.T) {
	observed := snapshot()
	observed.Description.Sku = ""

	report := Diff(observed, snapshot())
	require.Len(t, report.Added, 1)
	assert.Equal(t, "Sku", report.Added[0].Name)
	assert.Empty(t, report.Changed)
}

func TestDiffNonEmptyToEmptyIsRemoved(t *testing.T) {
	desired := snapshot()
	desired.Description.Highlights = nil

	report := Diff(snapshot(), desired)
	require.Len(t, report.Removed, 1)
	assert.Equal(t, "Highlights", report.Removed[0].Name)
	assert.Empty(t, report.Changed)
}

func TestDiffHighlightsReorderIsChanged(t *testing.T) {
	desired := snapshot()
	desired.Description.Highlights = []string{"y", "x"}

	report := Diff(snapshot(), desired)
	require.Len(t, report.Changed, 1)
	assert.Equal(t, "Highlights", report.Changed[0].Name)
	assert.Empty(t, report.Added)
	assert.Empty(t, report.Removed)
}

func TestDiffRegionReorderIsNotAChange(t *testing.T) {
	desired := snapshot()
	desired.RegionAvailability.Regions = []string{"eu-west-1", "us-east-1"}

	report := Diff(snapshot(), desired)
	assert.True(t, report.Empty())
}

func TestDiffRegionMembershipChange(t *testing.T) {
	desired := snapshot()
	desired.RegionAvailability.Regions = []string{"us-east-1", "ap-south-1"}

	report := Diff(snapshot(), desired)
	require.Len(t, report.Changed, 1)
	assert.Equal(t, "Regions", report.Changed[0].Name)
}

func TestDiffRateCardKeyReorderIsNotAChange(t *testing.T) {
	desired := snapshot()
	desired.Terms = listing.Terms{
		&listing.SupportTerm{RefundPolicy: "No refunds."},
		&listing.UsageTerm{CurrencyCode: listing.CurrencyUSD, RateCard: card("b", "0.007", "a", "0.004")},
	}

	report := Diff(snapshot(), desired)
	assert.True(t, report.Empty())
}

func TestDiffRateCardEntries(t *testing.T) {
	desired := snapshot()
	desired.Terms = listing.Terms{
		&listing.SupportTerm{RefundPolicy: "No refunds."},
		&listing.UsageTerm{CurrencyCode: listing.CurrencyUSD, RateCard: card("a", "0.005", "c", "0.009")},
	}

	report := Diff(snapshot(), desired)

	require.Len(t, report.Added, 1)
	assert.Equal(t, string(listing.TermTypeUsage), report.Added[0].Name)
	assert.Equal(t, listing.RateCardEntry{DimensionKey: "c", Price: "0.009"}, report.Added[0].Value)

	require.Len(t, report.Removed, 1)
	assert.Equal(t, listing.RateCardEntry{DimensionKey: "b", Price: "0.007"}, report.Removed[0].Value)

	require.Len(t, report.Changed, 1)
	assert.Equal(t, listing.RateCardEntry{DimensionKey: "a", Price: "0.004"}, report.Changed[0].OldValue)
	assert.Equal(t, listing.RateCardEntry{DimensionKey: "a", Price: "0.005"}, report.Changed[0].NewValue)
}

func TestDiffRateCardNumericEquality(t *testing.T) {
	desired := snapshot()
	desired.Terms = listing.Terms{
		&listing.SupportTerm{RefundPolicy: "No refunds."},
		&listing.UsageTerm{CurrencyCode: listing.CurrencyUSD, RateCard: card("a", "0.0040", "b", "0.007")},
	}

	report := Diff(snapshot(), desired)
	assert.True(t, report.Empty())
}

func TestDiffTermAddedAndRemoved(t *testing.T) {
	desired := snapshot()
	desired.Terms = append(append(listing.Terms{}, desired.Terms...), &listing.ConfigurableUpfrontTerm{
		CurrencyCode: listing.CurrencyUSD,
		RateCard:     card("a", "35.04"),
	})

	report := Diff(snapshot(), desired)
	require.Len(t, report.Added, 1)
	assert.Equal(t, string(listing.TermTypeConfigurableUpfront), report.Added[0].Name)

	reverse := Diff(desired, snapshot())
	require.Len(t, reverse.Removed, 1)
	assert.Equal(t, string(listing.TermTypeConfigurableUpfront), reverse.Removed[0].Name)
}

func TestDiffNonPricingTermChange(t *testing.T) {
	desired := snapshot()
	desired.Terms = listing.Terms{
		&listing.SupportTerm{RefundPolicy: "Refunds within 30 days."},
		&listing.UsageTerm{CurrencyCode: listing.CurrencyUSD, RateCard: card("a", "0.004", "b", "0.007")},
	}

	report := Diff(snapshot(), desired)
	require.Len(t, report.Changed, 1)
	assert.Equal(t, string(listing.TermTypeSupport), report.Changed[0].Name)
}

func TestReportString(t *testing.T) {
	desired := snapshot()
	desired.Description.Sku = "other"

	report := Diff(snapshot(), desired)
	s := report.String()
	assert.Contains(t, s, `"changed"`)
	assert.Contains(t, s, "Sku")
}
