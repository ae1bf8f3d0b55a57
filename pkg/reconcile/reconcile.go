// Package reconcile computes the change set that brings a listing's
// instance types and pricing in line with a desired pricing list. It is
// pure: it never talks to the catalog service itself.
package reconcile

import (
	"sort"

	"github.com/canonical/awsmp/pkg/changeset"
	"github.com/canonical/awsmp/pkg/errors"
	"github.com/canonical/awsmp/pkg/listing"
)

// Policy carries the operator overrides a reconciliation runs under.
type Policy struct {
	// AllowPriceChange permits price deltas on existing dimensions,
	// including free to paid conversions.
	AllowPriceChange bool
}

// Existing is the remote listing state a reconciliation runs against,
// fetched by the caller beforehand.
type Existing struct {
	Visibility listing.Visibility
	Dimensions []string
	Terms      listing.Terms
}

// Result is the outcome of a successful reconciliation. An empty Changes
// list means the listing already matches the desired pricing; callers
// must treat that as success with nothing to submit.
type Result struct {
	ToAdd      []string
	ToRestrict []string

	HourlyCard *listing.RateCard
	AnnualCard *listing.RateCard

	HourlyDiffs []errors.PriceDiff
	AnnualDiffs []errors.PriceDiff

	Changes []changeset.Change
}

// NoChange reports whether the reconciliation found nothing to submit.
func (r *Result) NoChange() bool {
	return len(r.Changes) == 0
}

// Reconcile computes the instance-type and pricing changes that make the
// listing match the desired pricing list. The desired list is the full
// authoritative set: dimensions it omits are restricted, dimensions it
// adds are registered and priced, and the pricing terms are replaced
// wholesale when anything differs. Dangerous transitions abort the whole
// reconciliation with a typed error and no partial change set. A nil
// monthlyFee means the listing carries no monthly subscription term.
func Reconcile(productID, offerID string, desired []listing.InstanceTypePricing,
	monthlyFee *listing.Price, existing Existing, unit changeset.DimensionUnit,
	policy Policy) (*Result, error) {

	for _, p := range desired {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	desiredNames := make(map[string]struct{}, len(desired))
	for _, p := range desired {
		desiredNames[p.Name] = struct{}{}
	}
	existingNames := make(map[string]struct{}, len(existing.Dimensions))
	for _, d := range existing.Dimensions {
		existingNames[d] = struct{}{}
	}

	var toAdd, toRestrict []string
	for name := range desiredNames {
		if _, ok := existingNames[name]; !ok {
			toAdd = append(toAdd, name)
		}
	}
	for name := range existingNames {
		if _, ok := desiredNames[name]; !ok {
			toRestrict = append(toRestrict, name)
		}
	}
	sort.Strings(toAdd)
	sort.Strings(toRestrict)

	// A restricted listing cannot gain or lose dimensions any more than
	// it can change price, even when a dimension drifted out of its own
	// rate card.
	if existing.Visibility == listing.VisibilityRestricted &&
		(len(toAdd) > 0 || len(toRestrict) > 0) {
		return nil, errors.NewRestrictedListingError(productID)
	}

	hourly, annual := listing.RateCards(desired)
	desiredTerms := changeset.PricingTerms(hourly, annual, monthlyFee)

	hourlyDiffs, annualDiffs, err := CheckPricingChange(
		productID, existing.Visibility, existing.Terms, desiredTerms, policy)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ToAdd:       toAdd,
		ToRestrict:  toRestrict,
		HourlyCard:  hourly,
		AnnualCard:  annual,
		HourlyDiffs: hourlyDiffs,
		AnnualDiffs: annualDiffs,
		Changes:     []changeset.Change{},
	}

	// Dimensions must exist before they can be priced, and pricing
	// updates replace the whole term list, so the order is fixed: add
	// dimensions, enable the types, update pricing, restrict leftovers.
	if len(toAdd) > 0 {
		result.Changes = append(result.Changes,
			changeset.AddDimensions(productID, unit, toAdd),
			changeset.AddInstanceTypes(productID, toAdd))
	}
	if len(toAdd) > 0 || len(toRestrict) > 0 || len(hourlyDiffs) > 0 || len(annualDiffs) > 0 {
		result.Changes = append(result.Changes,
			changeset.UpdatePricingTerms(offerID, desiredTerms))
	}
	if len(toRestrict) > 0 {
		result.Changes = append(result.Changes,
			changeset.RestrictInstanceTypes(productID, toRestrict))
	}

	return result, nil
}

// RequireFullCoverage checks that the desired pricing list covers every
// dimension currently on the listing. The public-offer path treats the
// local file as the full authoritative set, so an omission there is an
// authoring mistake rather than an intended restriction.
func RequireFullCoverage(desired []listing.InstanceTypePricing, existingDimensions []string) error {
	desiredNames := make(map[string]struct{}, len(desired))
	for _, p := range desired {
		desiredNames[p.Name] = struct{}{}
	}

	var missing []string
	for _, d := range existingDimensions {
		if _, ok := desiredNames[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.NewMissingInstanceTypeError(missing)
	}
	return nil
}
