package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productDetailsDoc = `{
  "Description": {
    "ProductTitle": "Ubuntu 24.04 LTS",
    "ShortDescription": "Ubuntu Server",
    "LongDescription": "Ubuntu Server with long term support.",
    "Sku": "ubuntu-2404",
    "Highlights": ["LTS release"],
    "SearchKeywords": ["ubuntu", "linux"],
    "Categories": ["Operating Systems"],
    "Visibility": "Public"
  },
  "PromotionalResources": {
    "LogoUrl": "https://example.com/logo.png",
    "Videos": [],
    "AdditionalResources": [{"Text": "Documentation", "Url": "https://example.com/docs"}]
  },
  "SupportInformation": {
    "Description": "Community support.",
    "Resources": []
  },
  "RegionAvailability": {
    "Regions": ["us-east-1", "eu-west-1"],
    "FutureRegionSupport": "All"
  },
  "Dimensions": [
    {"Description": "m6i.xlarge", "Key": "m6i.xlarge", "Name": "m6i.xlarge", "Types": ["Metered"], "Unit": "Hrs"}
  ],
  "Versions": [
    {"Id": "version-1", "VersionTitle": "24.04 initial", "CreationDate": "2026-08-01T00:00:00Z"}
  ]
}`

func TestParseDetails(t *testing.T) {
	details, err := ParseDetails([]byte(productDetailsDoc))
	require.NoError(t, err)

	assert.Equal(t, "Ubuntu 24.04 LTS", details.Description.ProductTitle)
	assert.Equal(t, VisibilityPublic, details.Description.Visibility)
	assert.Equal(t, []string{"m6i.xlarge"}, details.DimensionNames())
	require.Len(t, details.Versions, 1)
	assert.Equal(t, "version-1", details.Versions[0].ID)
}

func TestParseDetailsMalformed(t *testing.T) {
	_, err := ParseDetails([]byte(`{"Description": [`))
	require.Error(t, err)
}

func TestDetailsSnapshot(t *testing.T) {
	details, err := ParseDetails([]byte(productDetailsDoc))
	require.NoError(t, err)

	snap, err := details.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, snap.RegionAvailability.Regions)
	assert.Equal(t, "https://example.com/logo.png", snap.PromotionalResources.LogoURL)
}

func TestDetailsSnapshotMissingGroups(t *testing.T) {
	details, err := ParseDetails([]byte(`{"RegionAvailability": {"Regions": ["us-east-1"]}}`))
	require.NoError(t, err)
	_, err = details.Snapshot()
	assert.Error(t, err, "missing description group")

	details, err = ParseDetails([]byte(`{"Description": {"ProductTitle": "x"}}`))
	require.NoError(t, err)
	_, err = details.Snapshot()
	assert.Error(t, err, "missing region group")
}

func TestNewSnapshotFromConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, listingYAML), "product", "offer")
	require.NoError(t, err)

	snap, err := NewSnapshot(cfg)
	require.NoError(t, err)

	assert.Equal(t, "Ubuntu 24.04 LTS", snap.Description.ProductTitle)
	assert.Equal(t, "All", snap.RegionAvailability.FutureRegionSupport)
	require.Len(t, snap.PromotionalResources.AdditionalResources, 1)
	assert.Equal(t, "Documentation", snap.PromotionalResources.AdditionalResources[0].Text)

	// Terms: support, legal, usage, annual upfront.
	require.Len(t, snap.Terms, 4)
	usage, ok := snap.Terms.Usage()
	require.True(t, ok)
	assert.Equal(t, []string{"m6i.xlarge", "t2.nano"}, usage.RateCard.Keys())

	upfront, ok := snap.Terms.ConfigurableUpfront()
	require.True(t, ok)
	require.NotNil(t, upfront.Selector)
	assert.Equal(t, DurationOneYear, upfront.Selector.Value)
	assert.Equal(t, []string{"m6i.xlarge"}, upfront.RateCard.Keys())
}

func TestNewSnapshotInvalidConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, listingYAML), "product", "offer")
	require.NoError(t, err)
	cfg.Product.Description.Highlights = nil

	_, err = NewSnapshot(cfg)
	require.Error(t, err)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com/", normalizeURL("https://example.com"))
	assert.Equal(t, "https://example.com/docs", normalizeURL("https://example.com/docs"))
	assert.Equal(t, "", normalizeURL(""))
}
