package changeset

import "github.com/canonical/awsmp/pkg/listing"

// StandardEulaVersion is the default version of the AWS standard EULA
// used when a private offer does not bring a custom document.
const StandardEulaVersion = "2022-07-14"

// privateOfferEula picks the custom document when a URL is given and the
// standard EULA otherwise.
func privateOfferEula(eulaURL string) []listing.EulaDocument {
	if eulaURL != "" {
		return []listing.EulaDocument{{Type: listing.EulaCustom, URL: eulaURL}}
	}
	return []listing.EulaDocument{{Type: listing.EulaStandard, Version: StandardEulaVersion}}
}

// PrivateOffer builds the full change set that creates and releases a
// private offer for an existing product.
func PrivateOffer(productID, offerName string, buyerAccounts []string,
	pricing []listing.InstanceTypePricing, availableForDays, validForDays int, eulaURL string) []Change {
	hourly, annual := listing.RateCards(pricing)
	return []Change{
		CreateOffer(productID),
		UpdateInformation("", offerName, "Private offer for "+productID),
		UpdateTargeting(buyerAccounts),
		UpdatePricingTerms("", PricingTerms(hourly, annual, nil)),
		UpdateAvailability(availableForDays),
		UpdateLegalTerms("", privateOfferEula(eulaURL)),
		UpdateValidityTerms(validForDays),
		ReleaseOffer(""),
	}
}

// CreateListing builds the change set that creates a draft product with
// its public offer.
func CreateListing() []Change {
	return []Change{
		CreateProduct(),
		CreateOffer(NewProductIdentifier),
	}
}

// UpdateListing builds the change set that brings the product's
// description and region availability in line with the local config.
func UpdateListing(productID string, product *listing.ProductConfig) ([]Change, error) {
	desc, err := UpdateProductDescription(productID, &product.Description)
	if err != nil {
		return nil, err
	}
	if err := product.Region.Validate(); err != nil {
		return nil, err
	}
	return []Change{
		desc,
		AddRegions(productID, product.Region.CommercialRegions),
		UpdateFutureRegionSupport(productID, product.Region.FutureRegionSupported()),
	}, nil
}

// ReleaseListing builds the change set that makes a limited product and
// its public offer publicly visible.
func ReleaseListing(productID, offerID string) []Change {
	return []Change{
		ReleaseProduct(productID),
		UpdateInformation(offerID, "Product id "+productID+" public offer", ""),
		ReleaseOffer(offerID),
	}
}
