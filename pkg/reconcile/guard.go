package reconcile

import (
	"sort"

	"github.com/canonical/awsmp/pkg/errors"
	"github.com/canonical/awsmp/pkg/listing"
)

// CheckPricingChange classifies the pricing transition from the existing
// terms to the desired terms and refuses the dangerous ones. Checks run
// in a fixed order: restricted listing, pricing shape change, free to
// paid conversion, then any remaining price delta without override. On
// success it returns the per-dimension hourly and annual diffs, both
// possibly empty.
func CheckPricingChange(productID string, visibility listing.Visibility,
	existing, desired listing.Terms, policy Policy) (hourlyDiffs, annualDiffs []errors.PriceDiff, err error) {

	existingUsage, hasExisting := existing.Usage()
	desiredUsage, hasDesired := desired.Usage()

	if visibility == listing.VisibilityRestricted {
		if pricingChanged(existing, desired) {
			return nil, nil, errors.NewRestrictedListingError(productID)
		}
		return nil, nil, nil
	}

	// A listing with no published pricing yet has nothing to guard.
	if !hasExisting {
		return nil, nil, nil
	}
	if !hasDesired {
		return nil, nil, errors.NewPricingModelChangeError(existing.PricingType().String(), "none")
	}

	if existing.PricingType() != desired.PricingType() {
		return nil, nil, errors.NewPricingModelChangeError(
			existing.PricingType().String(), desired.PricingType().String())
	}

	hourlyDiffs = rateCardDiffs(existingUsage.RateCard, desiredUsage.RateCard)
	if existingUpfront, ok := existing.ConfigurableUpfront(); ok {
		desiredUpfront, _ := desired.ConfigurableUpfront()
		annualDiffs = rateCardDiffs(existingUpfront.RateCard, desiredUpfront.RateCard)
	}
	if existingRecurring, ok := existing.RecurringPayment(); ok {
		desiredRecurring, ok := desired.RecurringPayment()
		if ok && !listing.EqualPrice(existingRecurring.Price, desiredRecurring.Price) {
			hourlyDiffs = append(hourlyDiffs, errors.PriceDiff{
				Dimension: "monthly-subscription",
				Old:       existingRecurring.Price,
				New:       desiredRecurring.Price,
			})
		}
	}

	if !policy.AllowPriceChange {
		if f2p := freeToPaid(hourlyDiffs, annualDiffs); len(f2p) > 0 {
			return nil, nil, errors.NewFreeToPaidError(f2p)
		}
		if len(hourlyDiffs)+len(annualDiffs) > 0 {
			all := append(append([]errors.PriceDiff{}, hourlyDiffs...), annualDiffs...)
			return nil, nil, errors.NewPriceChangeNotAllowedError(all)
		}
	}

	return hourlyDiffs, annualDiffs, nil
}

// rateCardDiffs returns the dimensions both cards price at different
// values, compared numerically. Added or removed dimensions are not
// price changes and never appear here.
func rateCardDiffs(existing, desired *listing.RateCard) []errors.PriceDiff {
	var diffs []errors.PriceDiff
	for _, key := range existing.Keys() {
		oldPrice, _ := existing.Get(key)
		newPrice, ok := desired.Get(key)
		if !ok {
			continue
		}
		if !listing.EqualPrice(oldPrice, newPrice) {
			diffs = append(diffs, errors.PriceDiff{Dimension: key, Old: oldPrice, New: newPrice})
		}
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Dimension < diffs[j].Dimension })
	return diffs
}

// freeToPaid filters the diffs down to zero-to-nonzero transitions.
func freeToPaid(hourly, annual []errors.PriceDiff) []errors.PriceDiff {
	var out []errors.PriceDiff
	for _, d := range append(append([]errors.PriceDiff{}, hourly...), annual...) {
		if listing.IsZeroPrice(d.Old) && !listing.IsZeroPrice(d.New) {
			out = append(out, d)
		}
	}
	return out
}

// pricingChanged reports whether the desired terms change the pricing of
// the existing terms in any way: shape, dimension membership, or value.
func pricingChanged(existing, desired listing.Terms) bool {
	if existing.PricingType() != desired.PricingType() {
		return true
	}
	existingUsage, hasExisting := existing.Usage()
	desiredUsage, hasDesired := desired.Usage()
	if hasExisting != hasDesired {
		return true
	}
	if hasExisting && !existingUsage.RateCard.Equal(desiredUsage.RateCard) {
		return true
	}
	if existingUpfront, ok := existing.ConfigurableUpfront(); ok {
		desiredUpfront, _ := desired.ConfigurableUpfront()
		if !existingUpfront.RateCard.Equal(desiredUpfront.RateCard) {
			return true
		}
	}
	existingRecurring, hasExistingRecurring := existing.RecurringPayment()
	desiredRecurring, hasDesiredRecurring := desired.RecurringPayment()
	if hasExistingRecurring != hasDesiredRecurring {
		return true
	}
	if hasExistingRecurring && !listing.EqualPrice(existingRecurring.Price, desiredRecurring.Price) {
		return true
	}
	return false
}
