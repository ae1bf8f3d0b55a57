package listing

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/canonical/awsmp/pkg/errors"
)

// Visibility is the publication state of a marketplace entity.
type Visibility string

// Visibility states reported by the Marketplace Catalog API.
const (
	VisibilityDraft      Visibility = "Draft"
	VisibilityLimited    Visibility = "Limited"
	VisibilityPublic     Visibility = "Public"
	VisibilityRestricted Visibility = "Restricted"
)

// Description is the normalized description group of a listing. The
// remote document carries the publication state here; locally built
// snapshots leave it empty and the diff never compares it.
type Description struct {
	ProductTitle     string
	ShortDescription string
	LongDescription  string
	Sku              string
	Highlights       []string
	SearchKeywords   []string
	Categories       []string
	Visibility       Visibility `json:"Visibility,omitempty"`
}

// Resource is a titled link shown with a listing.
type Resource struct {
	Text string
	URL  string `json:"Url"`
}

// PromotionalResources is the normalized promotional group of a listing.
type PromotionalResources struct {
	LogoURL             string `json:"LogoUrl"`
	Videos              []string
	AdditionalResources []Resource
}

// SupportInformation is the normalized support group of a listing.
type SupportInformation struct {
	Description string
	Resources   []string
}

// RegionAvailability is the normalized region group of a listing.
type RegionAvailability struct {
	Regions             []string
	FutureRegionSupport string
}

// Dimension is one billable instance-type key registered against a product,
// independent of its price.
type Dimension struct {
	Description string
	Key         string
	Name        string
	Types       []string
	Unit        string
}

// Version is one delivered AMI version of a product.
type Version struct {
	ID           string `json:"Id"`
	VersionTitle string
	CreationDate string
}

// Details is the full remote document of an AMI product, merged with the
// terms of its public offer. It is the raw observed state; Snapshot
// normalizes it for diffing.
type Details struct {
	Description          Description
	PromotionalResources PromotionalResources
	SupportInformation   SupportInformation
	RegionAvailability   RegionAvailability
	Dimensions           []Dimension
	Versions             []Version
	Terms                Terms
}

// ParseDetails decodes an API details document.
func ParseDetails(raw []byte) (*Details, error) {
	var d Details
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, errors.NewValidationError("DetailsDocument", nil, err.Error())
	}
	return &d, nil
}

// DimensionNames returns the registered dimension keys in document order.
func (d *Details) DimensionNames() []string {
	names := make([]string, 0, len(d.Dimensions))
	for _, dim := range d.Dimensions {
		names = append(names, dim.Name)
	}
	return names
}

// EntitySnapshot is the normalized representation of a listing's declared
// or observed state. Snapshots are immutable value objects constructed
// fresh per reconciliation call; diffing them cannot fail.
type EntitySnapshot struct {
	Description          Description
	PromotionalResources PromotionalResources
	SupportInformation   SupportInformation
	RegionAvailability   RegionAvailability
	Terms                Terms
}

// Snapshot normalizes observed remote details into a diffable snapshot.
// A document missing its description or region group is malformed.
func (d *Details) Snapshot() (*EntitySnapshot, error) {
	if d.Description.ProductTitle == "" {
		return nil, errors.NewValidationError("Description", nil, "details document is missing the description group")
	}
	if len(d.RegionAvailability.Regions) == 0 {
		return nil, errors.NewValidationError("RegionAvailability", nil, "details document is missing the region group")
	}
	if err := d.Terms.Validate(); err != nil {
		return nil, err
	}

	snap := &EntitySnapshot{
		Description:          d.Description,
		PromotionalResources: d.PromotionalResources,
		SupportInformation:   d.SupportInformation,
		RegionAvailability:   d.RegionAvailability,
		Terms:                d.Terms,
	}
	snap.PromotionalResources.LogoURL = normalizeURL(snap.PromotionalResources.LogoURL)
	for i, v := range snap.PromotionalResources.Videos {
		snap.PromotionalResources.Videos[i] = normalizeURL(v)
	}
	for i, r := range snap.PromotionalResources.AdditionalResources {
		snap.PromotionalResources.AdditionalResources[i].URL = normalizeURL(r.URL)
	}
	return snap, nil
}

// NewSnapshot normalizes a local listing config into a diffable snapshot,
// the same shape an observed remote entity reduces to.
func NewSnapshot(cfg *Config) (*EntitySnapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	desc := cfg.Product.Description
	resources := make([]Resource, 0, len(desc.AdditionalResources))
	for _, item := range desc.AdditionalResources {
		resources = append(resources, Resource{Text: item["text"], URL: normalizeURL(item["url"])})
	}
	videos := make([]string, 0, len(desc.VideoURLs))
	for _, v := range desc.VideoURLs {
		videos = append(videos, normalizeURL(v))
	}

	hourly, annual := RateCards(cfg.Offer.InstanceTypes)

	terms := Terms{
		&SupportTerm{RefundPolicy: cfg.Offer.RefundPolicy},
		&LegalTerm{Documents: cfg.Offer.EulaDocument},
		&UsageTerm{CurrencyCode: CurrencyUSD, RateCard: hourly},
	}
	if annual != nil {
		terms = append(terms, &ConfigurableUpfrontTerm{
			CurrencyCode: CurrencyUSD,
			Selector:     &Selector{Type: DurationSelectorType, Value: DurationOneYear},
			Constraints: &Constraints{
				MultipleDimensionSelection: SelectionAllowed,
				QuantityConfiguration:      SelectionAllowed,
			},
			RateCard: annual,
		})
	}
	if cfg.Offer.MonthlySubscriptionFee != nil {
		terms = append(terms, &RecurringPaymentTerm{
			CurrencyCode:  CurrencyUSD,
			BillingPeriod: "Monthly",
			Price:         cfg.Offer.MonthlySubscriptionFee.String(),
		})
	}

	return &EntitySnapshot{
		Description: Description{
			ProductTitle:     strings.TrimSpace(desc.ProductTitle),
			ShortDescription: desc.ShortDescription,
			LongDescription:  strings.TrimSpace(desc.LongDescription),
			Sku:              desc.Sku,
			Highlights:       desc.Highlights,
			SearchKeywords:   desc.SearchKeywords,
			Categories:       desc.Categories,
		},
		PromotionalResources: PromotionalResources{
			LogoURL:             normalizeURL(desc.LogoURL),
			Videos:              videos,
			AdditionalResources: resources,
		},
		SupportInformation: SupportInformation{
			Description: strings.TrimSpace(desc.SupportDescription),
			Resources:   desc.SupportResources,
		},
		RegionAvailability: RegionAvailability{
			Regions:             cfg.Product.Region.CommercialRegions,
			FutureRegionSupport: cfg.Product.Region.FutureRegionSupported(),
		},
		Terms: terms,
	}, nil
}

// normalizeURL gives both sides of a diff the same URL form: a bare host
// gains a trailing slash, matching how the API echoes stored links.
func normalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
