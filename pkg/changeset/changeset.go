// Package changeset builds Marketplace Catalog change requests. Every
// builder returns a Change with structured Details; the transport layer
// stringifies the details just before submission.
package changeset

import (
	"fmt"
	"time"

	"github.com/canonical/awsmp/pkg/listing"
)

// Entity type discriminators used by the catalog API.
const (
	EntityTypeOffer      = "Offer@1.0"
	EntityTypeAmiProduct = "AmiProduct@1.0"
)

// Cross-change identifier placeholders. A change in a set can reference
// the entity created by an earlier change in the same set.
const (
	NewOfferIdentifier   = "$CreateOfferChange.Entity.Identifier"
	NewProductIdentifier = "$CreateProductChange.Entity.Identifier"
)

// DimensionUnit is the billing unit of a metered dimension.
type DimensionUnit string

// Billing units supported for AMI product dimensions.
const (
	UnitHrs   DimensionUnit = "Hrs"
	UnitUnits DimensionUnit = "Units"
)

// Entity identifies the product or offer a change applies to.
type Entity struct {
	Type       string `json:"Type"`
	Identifier string `json:"Identifier,omitempty"`
}

// Change is one entry of a StartChangeSet request.
type Change struct {
	ChangeType string `json:"ChangeType"`
	ChangeName string `json:"ChangeName,omitempty"`
	Entity     Entity `json:"Entity"`
	Details    any    `json:"Details,omitempty"`
}

func offerEntity(offerID string) Entity {
	if offerID == "" {
		offerID = NewOfferIdentifier
	}
	return Entity{Type: EntityTypeOffer, Identifier: offerID}
}

func productEntity(productID string) Entity {
	return Entity{Type: EntityTypeAmiProduct, Identifier: productID}
}

// CreateProduct creates a new draft AMI product.
func CreateProduct() Change {
	return Change{
		ChangeType: "CreateProduct",
		ChangeName: "CreateProductChange",
		Entity:     Entity{Type: EntityTypeAmiProduct},
		Details:    map[string]any{},
	}
}

// CreateOffer creates a new offer attached to a product. The product may
// be referenced by placeholder when created in the same change set.
func CreateOffer(productID string) Change {
	return Change{
		ChangeType: "CreateOffer",
		ChangeName: "CreateOfferChange",
		Entity:     Entity{Type: EntityTypeOffer},
		Details:    map[string]any{"ProductId": productID},
	}
}

// UpdateInformation sets the offer name. An empty offerID targets the
// offer created earlier in the same change set.
func UpdateInformation(offerID, name, description string) Change {
	return Change{
		ChangeType: "UpdateInformation",
		Entity:     offerEntity(offerID),
		Details: map[string]any{
			"Name":        name,
			"Description": description,
		},
	}
}

// UpdateTargeting restricts a private offer to the given buyer accounts.
func UpdateTargeting(buyerAccounts []string) Change {
	return Change{
		ChangeType: "UpdateTargeting",
		Entity:     offerEntity(""),
		Details: map[string]any{
			"PositiveTargeting": map[string]any{"BuyerAccounts": buyerAccounts},
		},
	}
}

// PricingTerms builds the full replacement pricing term list from rate
// cards. The annual term is included only when an annual card is given,
// the monthly subscription term only when a fee is given.
func PricingTerms(hourly, annual *listing.RateCard, monthlyFee *listing.Price) listing.Terms {
	terms := listing.Terms{
		&listing.UsageTerm{CurrencyCode: listing.CurrencyUSD, RateCard: hourly},
	}
	if annual != nil {
		terms = append(terms, &listing.ConfigurableUpfrontTerm{
			CurrencyCode: listing.CurrencyUSD,
			Selector: &listing.Selector{
				Type:  listing.DurationSelectorType,
				Value: listing.DurationOneYear,
			},
			Constraints: &listing.Constraints{
				MultipleDimensionSelection: listing.SelectionAllowed,
				QuantityConfiguration:      listing.SelectionAllowed,
			},
			RateCard: annual,
		})
	}
	if monthlyFee != nil {
		terms = append(terms, &listing.RecurringPaymentTerm{
			CurrencyCode:  listing.CurrencyUSD,
			BillingPeriod: "Monthly",
			Price:         monthlyFee.String(),
		})
	}
	return terms
}

// UpdatePricingTerms replaces the offer's pricing terms wholesale. The
// term list must carry every dimension the listing prices, not a delta.
func UpdatePricingTerms(offerID string, terms listing.Terms) Change {
	return Change{
		ChangeType: "UpdatePricingTerms",
		Entity:     offerEntity(offerID),
		Details: map[string]any{
			"PricingModel": "Usage",
			"Terms":        terms,
		},
	}
}

// UpdateAvailability sets the offer's availability end date, counted in
// days from today.
func UpdateAvailability(daysFromToday int) Change {
	end := time.Now().AddDate(0, 0, daysFromToday)
	return Change{
		ChangeType: "UpdateAvailability",
		Entity:     offerEntity(""),
		Details:    map[string]any{"AvailabilityEndDate": end.Format("2006-01-02")},
	}
}

// UpdateLegalTerms replaces the offer's EULA documents.
func UpdateLegalTerms(offerID string, documents []listing.EulaDocument) Change {
	return Change{
		ChangeType: "UpdateLegalTerms",
		Entity:     offerEntity(offerID),
		Details: map[string]any{
			"Terms": listing.Terms{&listing.LegalTerm{Documents: documents}},
		},
	}
}

// UpdateValidityTerms sets how long a private offer agreement runs.
func UpdateValidityTerms(days int) Change {
	return Change{
		ChangeType: "UpdateValidityTerms",
		Entity:     offerEntity(""),
		Details: map[string]any{
			"Terms": []map[string]any{{
				"Type":              "ValidityTerm",
				"AgreementDuration": fmt.Sprintf("P%dD", days),
			}},
		},
	}
}

// UpdateSupportTerms replaces the offer's refund policy.
func UpdateSupportTerms(offerID, refundPolicy string) Change {
	return Change{
		ChangeType: "UpdateSupportTerms",
		Entity:     offerEntity(offerID),
		Details: map[string]any{
			"Terms": listing.Terms{&listing.SupportTerm{RefundPolicy: refundPolicy}},
		},
	}
}

// productDescriptionDetails is the UpdateInformation payload of an AMI
// product.
type productDescriptionDetails struct {
	ProductTitle        string             `json:"ProductTitle"`
	LogoURL             string             `json:"LogoUrl"`
	ShortDescription    string             `json:"ShortDescription"`
	LongDescription     string             `json:"LongDescription"`
	Highlights          []string           `json:"Highlights"`
	SearchKeywords      []string           `json:"SearchKeywords"`
	Categories          []string           `json:"Categories"`
	Sku                 string             `json:"Sku,omitempty"`
	AdditionalResources []listing.Resource `json:"AdditionalResources"`
	VideoURLs           []string           `json:"VideoUrls"`
	SupportDescription  string             `json:"SupportDescription"`
}

// UpdateProductDescription replaces the product's description fields from
// a validated local description config.
func UpdateProductDescription(productID string, desc *listing.DescriptionConfig) (Change, error) {
	if err := desc.Validate(); err != nil {
		return Change{}, err
	}

	resources := make([]listing.Resource, 0, len(desc.AdditionalResources))
	for _, r := range desc.AdditionalResources {
		resources = append(resources, listing.Resource{Text: r["text"], URL: r["url"]})
	}

	return Change{
		ChangeType: "UpdateInformation",
		Entity:     productEntity(productID),
		Details: productDescriptionDetails{
			ProductTitle:        desc.ProductTitle,
			LogoURL:             desc.LogoURL,
			ShortDescription:    desc.ShortDescription,
			LongDescription:     desc.LongDescription,
			Highlights:          desc.Highlights,
			SearchKeywords:      desc.SearchKeywords,
			Categories:          desc.Categories,
			Sku:                 desc.Sku,
			AdditionalResources: resources,
			VideoURLs:           desc.VideoURLs,
			SupportDescription:  desc.SupportDescription,
		},
	}, nil
}

// AddDimensions registers new metered dimensions, one per instance type.
// The Details payload of this change type is an array.
func AddDimensions(productID string, unit DimensionUnit, instanceTypes []string) Change {
	dims := make([]listing.Dimension, 0, len(instanceTypes))
	for _, it := range instanceTypes {
		dims = append(dims, listing.Dimension{
			Description: it,
			Key:         it,
			Name:        it,
			Types:       []string{"Metered"},
			Unit:        string(unit),
		})
	}
	return Change{
		ChangeType: "AddDimensions",
		Entity:     productEntity(productID),
		Details:    dims,
	}
}

// AddInstanceTypes enables additional instance types on a product.
func AddInstanceTypes(productID string, instanceTypes []string) Change {
	return Change{
		ChangeType: "AddInstanceTypes",
		Entity:     productEntity(productID),
		Details:    map[string]any{"InstanceTypes": instanceTypes},
	}
}

// RestrictInstanceTypes removes instance types from a product. Restricted
// types keep their dimensions but can no longer be purchased.
func RestrictInstanceTypes(productID string, instanceTypes []string) Change {
	return Change{
		ChangeType: "RestrictInstanceTypes",
		Entity:     productEntity(productID),
		Details:    map[string]any{"InstanceTypes": instanceTypes},
	}
}

// AddRegions enables the given commercial regions on a product.
func AddRegions(productID string, regions []string) Change {
	return Change{
		ChangeType: "AddRegions",
		Entity:     productEntity(productID),
		Details:    map[string]any{"Regions": regions},
	}
}

// UpdateFutureRegionSupport sets whether regions AWS opens later are
// enabled automatically. Supported is "All" or "None".
func UpdateFutureRegionSupport(productID, supported string) Change {
	return Change{
		ChangeType: "UpdateFutureRegionSupport",
		Entity:     productEntity(productID),
		Details: map[string]any{
			"FutureRegionSupport": map[string]any{"SupportedRegions": []string{supported}},
		},
	}
}

// AddDeliveryOptions publishes a new AMI version on a product.
func AddDeliveryOptions(productID string, version *listing.VersionConfig) (Change, error) {
	if err := version.Validate(); err != nil {
		return Change{}, err
	}
	return Change{
		ChangeType: "AddDeliveryOptions",
		Entity:     productEntity(productID),
		Details: map[string]any{
			"Version": map[string]any{
				"VersionTitle": version.VersionTitle,
				"ReleaseNotes": version.ReleaseNotes,
			},
			"DeliveryOptions": []map[string]any{{
				"Details": map[string]any{
					"AmiDeliveryOptionDetails": map[string]any{
						"AmiSource": map[string]any{
							"AmiId":                  version.AmiID,
							"AccessRoleArn":          version.AccessRoleArn,
							"UserName":               version.OSUserName,
							"OperatingSystemName":    version.OSSystemName,
							"OperatingSystemVersion": version.OSSystemVersion,
							"ScanningPort":           version.ScanningPort,
						},
						"UsageInstructions":       version.UsageInstructions,
						"RecommendedInstanceType": version.RecommendedInstanceType,
						"SecurityGroups": []map[string]any{{
							"IpProtocol": version.IPProtocol,
							"IpRanges":   version.IPRanges,
							"FromPort":   version.FromPort,
							"ToPort":     version.ToPort,
						}},
					},
				},
			}},
		},
	}, nil
}

// ReleaseProduct moves a limited product to public visibility.
func ReleaseProduct(productID string) Change {
	return Change{
		ChangeType: "ReleaseProduct",
		Entity:     productEntity(productID),
		Details:    map[string]any{},
	}
}

// ReleaseOffer releases an offer. An empty offerID targets the offer
// created earlier in the same change set.
func ReleaseOffer(offerID string) Change {
	return Change{
		ChangeType: "ReleaseOffer",
		Entity:     offerEntity(offerID),
		Details:    map[string]any{},
	}
}
