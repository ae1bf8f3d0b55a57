package listing

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/canonical/awsmp/pkg/errors"
)

// DescriptionConfig is the description section of a local listing file.
type DescriptionConfig struct {
	ProductTitle        string              `yaml:"product_title"`
	ShortDescription    string              `yaml:"short_description"`
	LongDescription     string              `yaml:"long_description"`
	LogoURL             string              `yaml:"logourl"`
	Highlights          []string            `yaml:"highlights"`
	Categories          []string            `yaml:"categories"`
	SearchKeywords      []string            `yaml:"search_keywords"`
	SupportDescription  string              `yaml:"support_description"`
	SupportResources    []string            `yaml:"support_resources"`
	Sku                 string              `yaml:"sku"`
	VideoURLs           []string            `yaml:"video_urls"`
	AdditionalResources []map[string]string `yaml:"additional_resources"`
}

// Validate enforces the marketplace field constraints on the description.
func (d *DescriptionConfig) Validate() error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"description.product_title", d.ProductTitle, 72},
		{"description.short_description", d.ShortDescription, 1000},
		{"description.long_description", d.LongDescription, 5000},
		{"description.support_description", d.SupportDescription, 2000},
		{"description.sku", d.Sku, 100},
	}
	for _, c := range checks {
		if len(c.value) > c.max {
			return errors.NewValidationError(c.field, c.value,
				fmt.Sprintf("must be at most %d characters, got %d", c.max, len(c.value)))
		}
	}

	if len(d.Highlights) < 1 || len(d.Highlights) > 3 {
		return errors.NewValidationError("description.highlights", d.Highlights, "between 1 and 3 highlights required")
	}
	for _, h := range d.Highlights {
		if len(h) > 500 {
			return errors.NewValidationError("description.highlights", h, "each highlight can be at most 500 characters")
		}
	}

	if len(d.Categories) < 1 || len(d.Categories) > 3 {
		return errors.NewValidationError("description.categories", d.Categories, "between 1 and 3 categories required")
	}
	for _, c := range d.Categories {
		if !ValidCategory(c) {
			return errors.NewValidationError("description.categories", c, fmt.Sprintf("%q is not a valid category", c))
		}
	}

	if len(d.SearchKeywords) < 1 {
		return errors.NewValidationError("description.search_keywords", d.SearchKeywords, "at least one keyword required")
	}
	if len(strings.Join(d.SearchKeywords, "")) > 250 {
		return errors.NewValidationError("description.search_keywords", d.SearchKeywords,
			"combined character count of keywords can be at most 250 characters")
	}

	if _, err := url.ParseRequestURI(d.LogoURL); err != nil {
		return errors.NewValidationError("description.logourl", d.LogoURL, "not a valid URL")
	}
	if len(d.VideoURLs) > 1 {
		return errors.NewValidationError("description.video_urls", d.VideoURLs, "at most one video URL is supported")
	}
	if len(d.AdditionalResources) > 3 {
		return errors.NewValidationError("description.additional_resources", d.AdditionalResources,
			"at most 3 additional resources are supported")
	}
	return nil
}

// RegionConfig is the region section of a local listing file.
type RegionConfig struct {
	CommercialRegions   []string `yaml:"commercial_regions"`
	FutureRegionSupport bool     `yaml:"future_region_support"`
}

// Validate checks the region list is present. The literal "all" as the sole
// entry defers expansion to the marketplace client.
func (r *RegionConfig) Validate() error {
	if len(r.CommercialRegions) == 0 {
		return errors.NewValidationError("region.commercial_regions", r.CommercialRegions,
			"at least one commercial region required")
	}
	return nil
}

// All reports whether the config requests every commercial region.
func (r *RegionConfig) All() bool {
	return len(r.CommercialRegions) == 1 && r.CommercialRegions[0] == "all"
}

// FutureRegionSupported returns the API form of the future-region flag.
func (r *RegionConfig) FutureRegionSupported() string {
	if r.FutureRegionSupport {
		return "All"
	}
	return "None"
}

// VersionConfig is the AMI version section of a local listing file.
type VersionConfig struct {
	VersionTitle            string   `yaml:"version_title"`
	ReleaseNotes            string   `yaml:"release_notes"`
	AmiID                   string   `yaml:"ami_id"`
	AccessRoleArn           string   `yaml:"access_role_arn"`
	OSUserName              string   `yaml:"os_user_name"`
	OSSystemName            string   `yaml:"os_system_name"`
	OSSystemVersion         string   `yaml:"os_system_version"`
	ScanningPort            int      `yaml:"scanning_port"`
	UsageInstructions       string   `yaml:"usage_instructions"`
	RecommendedInstanceType string   `yaml:"recommended_instance_type"`
	IPProtocol              string   `yaml:"ip_protocol"`
	IPRanges                []string `yaml:"ip_ranges"`
	FromPort                int      `yaml:"from_port"`
	ToPort                  int      `yaml:"to_port"`
}

// Validate enforces the AMI delivery option constraints.
func (v *VersionConfig) Validate() error {
	if len(v.VersionTitle) > 36 {
		return errors.NewValidationError("version.version_title", v.VersionTitle, "must be at most 36 characters")
	}
	if !strings.HasPrefix(v.AmiID, "ami-") {
		return errors.NewValidationError("version.ami_id", v.AmiID, "AMI id should start with `ami-`")
	}
	if !strings.HasPrefix(v.AccessRoleArn, "arn:aws:iam::") {
		return errors.NewValidationError("version.access_role_arn", v.AccessRoleArn, "invalid IAM role ARN format")
	}
	if v.IPProtocol != "tcp" && v.IPProtocol != "udp" {
		return errors.NewValidationError("version.ip_protocol", v.IPProtocol, "must be tcp or udp")
	}
	if len(v.IPRanges) > 5 {
		return errors.NewValidationError("version.ip_ranges", v.IPRanges, "at most 5 IP ranges are supported")
	}
	for _, p := range []struct {
		field string
		value int
	}{
		{"version.scanning_port", v.ScanningPort},
		{"version.from_port", v.FromPort},
		{"version.to_port", v.ToPort},
	} {
		if p.value <= 1 || p.value > 65535 {
			return errors.NewValidationError(p.field, p.value, "port must be between 2 and 65535")
		}
	}
	return nil
}

// ProductConfig is the product section of a local listing file.
type ProductConfig struct {
	Description DescriptionConfig `yaml:"description"`
	Region      RegionConfig      `yaml:"region"`
	Version     VersionConfig     `yaml:"version"`
}

// Validate validates every product section.
func (p *ProductConfig) Validate() error {
	if err := p.Description.Validate(); err != nil {
		return err
	}
	if err := p.Region.Validate(); err != nil {
		return err
	}
	return p.Version.Validate()
}

// OfferConfig is the offer section of a local listing file.
type OfferConfig struct {
	EulaDocument           []EulaDocument        `yaml:"eula_document"`
	InstanceTypes          []InstanceTypePricing `yaml:"instance_types"`
	MonthlySubscriptionFee *Price                `yaml:"monthly_subscription_fee"`
	RefundPolicy           string                `yaml:"refund_policy"`
}

// Validate enforces the offer constraints.
func (o *OfferConfig) Validate() error {
	if len(o.EulaDocument) < 1 {
		return errors.NewValidationError("offer.eula_document", o.EulaDocument, "at least one EULA document required")
	}
	for _, d := range o.EulaDocument {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	if len(o.InstanceTypes) < 1 {
		return errors.NewValidationError("offer.instance_types", o.InstanceTypes, "at least one instance type required")
	}
	seen := make(map[string]struct{}, len(o.InstanceTypes))
	for _, it := range o.InstanceTypes {
		if err := it.Validate(); err != nil {
			return err
		}
		if _, dup := seen[it.Name]; dup {
			return errors.NewValidationError("offer.instance_types", it.Name, "duplicate instance type")
		}
		seen[it.Name] = struct{}{}
	}
	if o.MonthlySubscriptionFee != nil {
		if err := o.MonthlySubscriptionFee.Validate("offer.monthly_subscription_fee"); err != nil {
			return err
		}
		for _, it := range o.InstanceTypes {
			if it.Annual != nil {
				return errors.NewValidationError("offer.monthly_subscription_fee", o.MonthlySubscriptionFee.String(),
					"annual and monthly-subscription pricing cannot be combined in one offer")
			}
		}
	}
	if len(o.RefundPolicy) > 500 {
		return errors.NewValidationError("offer.refund_policy", o.RefundPolicy, "must be at most 500 characters")
	}
	return nil
}

// PricingType classifies the offer's pricing shape.
func (o *OfferConfig) PricingType() PricingType {
	if o.MonthlySubscriptionFee != nil {
		return PricingHourlyWithMonthly
	}
	for _, it := range o.InstanceTypes {
		if it.Annual != nil {
			return PricingHourlyWithAnnual
		}
	}
	return PricingHourly
}

// Config is a complete local listing file: product details plus offer terms.
type Config struct {
	Product ProductConfig `yaml:"product"`
	Offer   OfferConfig   `yaml:"offer"`
}

// Validate validates both sections.
func (c *Config) Validate() error {
	if err := c.Product.Validate(); err != nil {
		return err
	}
	return c.Offer.Validate()
}

// LoadConfig reads and validates a local listing file. The required
// top-level keys must all be present.
func LoadConfig(path string, required ...string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(path, nil, err)
	}

	var keys map[string]any
	if err := yaml.Unmarshal(raw, &keys); err != nil {
		return nil, errors.NewConfigError(path, nil, err)
	}
	var missing []string
	for _, key := range required {
		if _, ok := keys[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewConfigError(path, missing, nil)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.NewConfigError(path, nil, err)
	}
	return &cfg, nil
}
