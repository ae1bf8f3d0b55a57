package differ

import (
	"reflect"
	"slices"

	"github.com/canonical/awsmp/pkg/listing"
)

// Diff walks two snapshots field by field and classifies every difference.
// The observed snapshot is the remote listing, the desired snapshot the
// local configuration; entries read as "what applying the local config
// would do". Diffing valid snapshots cannot fail.
func Diff(observed, desired *listing.EntitySnapshot) *Report {
	d := &differ{report: &Report{
		Added:   []Entry{},
		Removed: []Entry{},
		Changed: []ChangedEntry{},
	}}

	d.scalar("ProductTitle", observed.Description.ProductTitle, desired.Description.ProductTitle)
	d.scalar("ShortDescription", observed.Description.ShortDescription, desired.Description.ShortDescription)
	d.scalar("LongDescription", observed.Description.LongDescription, desired.Description.LongDescription)
	d.scalar("Sku", observed.Description.Sku, desired.Description.Sku)
	d.stringList("Highlights", observed.Description.Highlights, desired.Description.Highlights)
	d.stringList("SearchKeywords", observed.Description.SearchKeywords, desired.Description.SearchKeywords)
	d.stringList("Categories", observed.Description.Categories, desired.Description.Categories)

	d.scalar("LogoUrl", observed.PromotionalResources.LogoURL, desired.PromotionalResources.LogoURL)
	d.stringList("Videos", observed.PromotionalResources.Videos, desired.PromotionalResources.Videos)
	d.resourceList("AdditionalResources",
		observed.PromotionalResources.AdditionalResources,
		desired.PromotionalResources.AdditionalResources)

	d.scalar("Description", observed.SupportInformation.Description, desired.SupportInformation.Description)
	d.stringList("Resources", observed.SupportInformation.Resources, desired.SupportInformation.Resources)

	d.regionSet("Regions", observed.RegionAvailability.Regions, desired.RegionAvailability.Regions)
	d.scalar("FutureRegionSupport",
		observed.RegionAvailability.FutureRegionSupport,
		desired.RegionAvailability.FutureRegionSupport)

	d.terms(observed.Terms, desired.Terms)

	return d.report
}

type differ struct {
	report *Report
}

func (d *differ) add(name string, value any)         { d.report.add(name, value) }
func (d *differ) remove(name string, value any)      { d.report.remove(name, value) }
func (d *differ) change(name string, oldV, newV any) { d.report.change(name, oldV, newV) }

// scalar compares a string field by value. An empty value on exactly one
// side is always Added or Removed, never Changed.
func (d *differ) scalar(name, observed, desired string) {
	switch {
	case observed == "" && desired == "":
	case observed == "":
		d.add(name, desired)
	case desired == "":
		d.remove(name, observed)
	case observed != desired:
		d.change(name, observed, desired)
	}
}

// stringList compares an order-sensitive list field. A reordering alone
// counts as Changed.
func (d *differ) stringList(name string, observed, desired []string) {
	switch {
	case len(observed) == 0 && len(desired) == 0:
	case len(observed) == 0:
		d.add(name, desired)
	case len(desired) == 0:
		d.remove(name, observed)
	case !slices.Equal(observed, desired):
		d.change(name, observed, desired)
	}
}

// regionSet compares a region list by membership only. Reordering with
// identical membership yields no entry.
func (d *differ) regionSet(name string, observed, desired []string) {
	switch {
	case len(observed) == 0 && len(desired) == 0:
	case len(observed) == 0:
		d.add(name, desired)
	case len(desired) == 0:
		d.remove(name, observed)
	default:
		obsSorted := slices.Clone(observed)
		desSorted := slices.Clone(desired)
		slices.Sort(obsSorted)
		slices.Sort(desSorted)
		if !slices.Equal(obsSorted, desSorted) {
			d.change(name, observed, desired)
		}
	}
}

func (d *differ) resourceList(name string, observed, desired []listing.Resource) {
	switch {
	case len(observed) == 0 && len(desired) == 0:
	case len(observed) == 0:
		d.add(name, desired)
	case len(desired) == 0:
		d.remove(name, observed)
	case !slices.Equal(observed, desired):
		d.change(name, observed, desired)
	}
}

// terms compares the term lists. Pricing terms are matched by term type
// and their rate cards compared key by key; non-pricing terms are matched
// pairwise by position.
func (d *differ) terms(observed, desired listing.Terms) {
	d.usageTerms(observed, desired)
	d.upfrontTerms(observed, desired)
	d.recurringTerms(observed, desired)
	d.nonPricingTerms(observed, desired)
}

func (d *differ) usageTerms(observed, desired listing.Terms) {
	label := string(listing.TermTypeUsage)
	obs, hasObs := observed.Usage()
	des, hasDes := desired.Usage()
	switch {
	case !hasObs && !hasDes:
	case !hasObs:
		d.add(label, des)
	case !hasDes:
		d.remove(label, obs)
	default:
		d.scalar(label, obs.CurrencyCode, des.CurrencyCode)
		d.rateCards(label, obs.RateCard, des.RateCard)
	}
}

func (d *differ) upfrontTerms(observed, desired listing.Terms) {
	label := string(listing.TermTypeConfigurableUpfront)
	obs, hasObs := observed.ConfigurableUpfront()
	des, hasDes := desired.ConfigurableUpfront()
	switch {
	case !hasObs && !hasDes:
	case !hasObs:
		d.add(label, des)
	case !hasDes:
		d.remove(label, obs)
	default:
		d.scalar(label, obs.CurrencyCode, des.CurrencyCode)
		// Duration and constraint changes are reported under the term's
		// own label so they are individually actionable.
		subField(d, label, obs.Selector, des.Selector)
		subField(d, label, obs.Constraints, des.Constraints)
		d.rateCards(label, obs.RateCard, des.RateCard)
	}
}

func (d *differ) recurringTerms(observed, desired listing.Terms) {
	label := string(listing.TermTypeRecurringPayment)
	obs, hasObs := observed.RecurringPayment()
	des, hasDes := desired.RecurringPayment()
	switch {
	case !hasObs && !hasDes:
	case !hasObs:
		d.add(label, des)
	case !hasDes:
		d.remove(label, obs)
	default:
		d.scalar(label, obs.CurrencyCode, des.CurrencyCode)
		d.scalar(label, obs.BillingPeriod, des.BillingPeriod)
		if !listing.EqualPrice(obs.Price, des.Price) {
			d.change(label, obs.Price, des.Price)
		}
	}
}

// subField compares an optional scalar sub-struct of a term.
func subField[T any](d *differ, label string, observed, desired *T) {
	switch {
	case observed == nil && desired == nil:
	case observed == nil:
		d.add(label, desired)
	case desired == nil:
		d.remove(label, observed)
	case !reflect.DeepEqual(observed, desired):
		d.change(label, observed, desired)
	}
}

// rateCards compares two rate cards by dimension key. Added entries follow
// the desired card's order, removed entries the observed card's order.
func (d *differ) rateCards(label string, observed, desired *listing.RateCard) {
	for _, key := range desired.Keys() {
		entry, _ := desired.Entry(key)
		if obsEntry, ok := observed.Entry(key); !ok {
			d.add(label, entry)
		} else if !listing.EqualPrice(obsEntry.Price, entry.Price) {
			d.change(label, obsEntry, entry)
		}
	}
	for _, key := range observed.Keys() {
		if !desired.Has(key) {
			entry, _ := observed.Entry(key)
			d.remove(label, entry)
		}
	}
}

// nonPricingTerms pairs support and legal terms by position.
func (d *differ) nonPricingTerms(observed, desired listing.Terms) {
	obs := nonPricing(observed)
	des := nonPricing(desired)

	for i := 0; i < len(obs) || i < len(des); i++ {
		switch {
		case i >= len(obs):
			d.add(string(des[i].TermType()), des[i])
		case i >= len(des):
			d.remove(string(obs[i].TermType()), obs[i])
		case obs[i].TermType() != des[i].TermType():
			d.remove(string(obs[i].TermType()), obs[i])
			d.add(string(des[i].TermType()), des[i])
		case !reflect.DeepEqual(obs[i], des[i]):
			d.change(string(obs[i].TermType()), obs[i], des[i])
		}
	}
}

func nonPricing(terms listing.Terms) []listing.Term {
	var out []listing.Term
	for _, t := range terms {
		if !listing.IsPricingTerm(t) {
			out = append(out, t)
		}
	}
	return out
}
