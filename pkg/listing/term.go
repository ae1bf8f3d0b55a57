package listing

import (
	"encoding/json"
	"fmt"

	"github.com/canonical/awsmp/pkg/errors"
)

// TermType discriminates the term variants carried by an offer.
type TermType string

// Term type discriminators as used by the Marketplace Catalog API.
const (
	TermTypeUsage               TermType = "UsageBasedPricingTerm"
	TermTypeConfigurableUpfront TermType = "ConfigurableUpfrontPricingTerm"
	TermTypeRecurringPayment    TermType = "RecurringPaymentTerm"
	TermTypeSupport             TermType = "SupportTerm"
	TermTypeLegal               TermType = "LegalTerm"
)

// CurrencyUSD is the only currency the marketplace rate cards use in practice.
const CurrencyUSD = "USD"

// Annual term selector and constraint values for paid AMI listings.
const (
	DurationSelectorType = "Duration"
	DurationOneYear      = "P365D"
	SelectionAllowed     = "Allowed"
	SelectionDisallowed  = "Disallowed"
)

// Term is the closed set of term variants an offer can carry. The diff
// engine and the reconciler switch exhaustively over the concrete types.
type Term interface {
	TermType() TermType
	isTerm()
}

// UsageTerm is the mandatory hourly pricing term.
type UsageTerm struct {
	CurrencyCode string
	RateCard     *RateCard
}

// TermType implements Term.
func (t *UsageTerm) TermType() TermType { return TermTypeUsage }
func (t *UsageTerm) isTerm()            {}

// Selector narrows an annual rate card to one agreement duration.
type Selector struct {
	Type  string
	Value string
}

// Constraints carries the purchase constraint flags of an annual rate card.
type Constraints struct {
	MultipleDimensionSelection string
	QuantityConfiguration      string
}

// ConfigurableUpfrontTerm is the annual (configurable upfront) pricing term.
type ConfigurableUpfrontTerm struct {
	CurrencyCode string
	Selector     *Selector
	Constraints  *Constraints
	RateCard     *RateCard
}

// TermType implements Term.
func (t *ConfigurableUpfrontTerm) TermType() TermType { return TermTypeConfigurableUpfront }
func (t *ConfigurableUpfrontTerm) isTerm()            {}

// RecurringPaymentTerm is a flat monthly subscription fee term.
type RecurringPaymentTerm struct {
	CurrencyCode  string
	BillingPeriod string
	Price         string
}

// TermType implements Term.
func (t *RecurringPaymentTerm) TermType() TermType { return TermTypeRecurringPayment }
func (t *RecurringPaymentTerm) isTerm()            {}

// SupportTerm carries the listing's refund policy text.
type SupportTerm struct {
	RefundPolicy string
}

// TermType implements Term.
func (t *SupportTerm) TermType() TermType { return TermTypeSupport }
func (t *SupportTerm) isTerm()            {}

// EulaDocument is either the standard AWS EULA at a given version or a
// custom EULA hosted at a URL, never both.
type EulaDocument struct {
	Type    string `yaml:"type"`
	Version string `yaml:"version,omitempty"`
	URL     string `yaml:"url,omitempty"`
}

// EULA document discriminators.
const (
	EulaStandard = "StandardEula"
	EulaCustom   = "CustomEula"
)

// Validate checks that exactly the fields required by the document type are set.
func (d EulaDocument) Validate() error {
	switch d.Type {
	case EulaCustom:
		if d.Version != "" {
			return errors.NewValidationError("eula_document", d, "CustomEula can't pass version of standard document")
		}
		if d.URL == "" {
			return errors.NewValidationError("eula_document", d, "CustomEula needs url")
		}
	case EulaStandard:
		if d.URL != "" {
			return errors.NewValidationError("eula_document", d, "StandardEula cannot have a custom document url")
		}
		if d.Version == "" {
			return errors.NewValidationError("eula_document", d, "specify version of StandardEula")
		}
	default:
		return errors.NewValidationError("eula_document", d, fmt.Sprintf("unknown EULA document type %q", d.Type))
	}
	return nil
}

// LegalTerm carries the offer's EULA documents.
type LegalTerm struct {
	Documents []EulaDocument
}

// TermType implements Term.
func (t *LegalTerm) TermType() TermType { return TermTypeLegal }
func (t *LegalTerm) isTerm()            {}

// Terms is an ordered term list with discriminated JSON encoding.
type Terms []Term

// rateCardItem is the wire shape of one rate card group inside a pricing term.
type rateCardItem struct {
	Selector    *Selector    `json:"Selector,omitempty"`
	Constraints *Constraints `json:"Constraints,omitempty"`
	RateCard    *RateCard    `json:"RateCard"`
}

// termWire is the superset wire shape used to decode any term variant.
type termWire struct {
	Type          TermType           `json:"Type"`
	CurrencyCode  string             `json:"CurrencyCode,omitempty"`
	RateCards     []rateCardItem     `json:"RateCards,omitempty"`
	BillingPeriod string             `json:"BillingPeriod,omitempty"`
	Price         string             `json:"Price,omitempty"`
	RefundPolicy  string             `json:"RefundPolicy,omitempty"`
	Documents     []eulaDocumentWire `json:"Documents,omitempty"`
}

type eulaDocumentWire struct {
	Type    string `json:"Type"`
	Version string `json:"Version,omitempty"`
	URL     string `json:"Url,omitempty"`
}

// UnmarshalJSON decodes a discriminated term list from API details.
func (ts *Terms) UnmarshalJSON(data []byte) error {
	var wires []termWire
	if err := json.Unmarshal(data, &wires); err != nil {
		return err
	}

	terms := make(Terms, 0, len(wires))
	for _, w := range wires {
		term, err := w.term()
		if err != nil {
			return err
		}
		terms = append(terms, term)
	}
	*ts = terms
	return nil
}

// term converts one wire record into its concrete variant.
func (w termWire) term() (Term, error) {
	switch w.Type {
	case TermTypeUsage:
		card := NewRateCard()
		if len(w.RateCards) > 0 && w.RateCards[len(w.RateCards)-1].RateCard != nil {
			card = w.RateCards[len(w.RateCards)-1].RateCard
		}
		return &UsageTerm{CurrencyCode: w.CurrencyCode, RateCard: card}, nil
	case TermTypeConfigurableUpfront:
		t := &ConfigurableUpfrontTerm{CurrencyCode: w.CurrencyCode, RateCard: NewRateCard()}
		if len(w.RateCards) > 0 {
			item := w.RateCards[len(w.RateCards)-1]
			t.Selector = item.Selector
			t.Constraints = item.Constraints
			if item.RateCard != nil {
				t.RateCard = item.RateCard
			}
		}
		return t, nil
	case TermTypeRecurringPayment:
		return &RecurringPaymentTerm{CurrencyCode: w.CurrencyCode, BillingPeriod: w.BillingPeriod, Price: w.Price}, nil
	case TermTypeSupport:
		return &SupportTerm{RefundPolicy: w.RefundPolicy}, nil
	case TermTypeLegal:
		docs := make([]EulaDocument, 0, len(w.Documents))
		for _, d := range w.Documents {
			docs = append(docs, EulaDocument{Type: d.Type, Version: d.Version, URL: d.URL})
		}
		return &LegalTerm{Documents: docs}, nil
	default:
		return nil, errors.NewValidationError("Terms", w.Type, fmt.Sprintf("unknown term type %q", w.Type))
	}
}

// MarshalJSON encodes the term list into the discriminated wire shape.
func (ts Terms) MarshalJSON() ([]byte, error) {
	wires := make([]termWire, 0, len(ts))
	for _, term := range ts {
		wires = append(wires, wireFromTerm(term))
	}
	return json.Marshal(wires)
}

func wireFromTerm(term Term) termWire {
	switch t := term.(type) {
	case *UsageTerm:
		return termWire{
			Type:         TermTypeUsage,
			CurrencyCode: t.CurrencyCode,
			RateCards:    []rateCardItem{{RateCard: t.RateCard}},
		}
	case *ConfigurableUpfrontTerm:
		return termWire{
			Type:         TermTypeConfigurableUpfront,
			CurrencyCode: t.CurrencyCode,
			RateCards: []rateCardItem{{
				Selector:    t.Selector,
				Constraints: t.Constraints,
				RateCard:    t.RateCard,
			}},
		}
	case *RecurringPaymentTerm:
		return termWire{
			Type:          TermTypeRecurringPayment,
			CurrencyCode:  t.CurrencyCode,
			BillingPeriod: t.BillingPeriod,
			Price:         t.Price,
		}
	case *SupportTerm:
		return termWire{Type: TermTypeSupport, RefundPolicy: t.RefundPolicy}
	case *LegalTerm:
		docs := make([]eulaDocumentWire, 0, len(t.Documents))
		for _, d := range t.Documents {
			docs = append(docs, eulaDocumentWire{Type: d.Type, Version: d.Version, URL: d.URL})
		}
		return termWire{Type: TermTypeLegal, Documents: docs}
	default:
		panic(fmt.Sprintf("unhandled term type %T", term))
	}
}

// MarshalJSON emits the wire shape with the Type discriminator.
func (t *UsageTerm) MarshalJSON() ([]byte, error) { return json.Marshal(wireFromTerm(t)) }

// MarshalJSON emits the wire shape with the Type discriminator.
func (t *ConfigurableUpfrontTerm) MarshalJSON() ([]byte, error) { return json.Marshal(wireFromTerm(t)) }

// MarshalJSON emits the wire shape with the Type discriminator.
func (t *RecurringPaymentTerm) MarshalJSON() ([]byte, error) { return json.Marshal(wireFromTerm(t)) }

// MarshalJSON emits the wire shape with the Type discriminator.
func (t *SupportTerm) MarshalJSON() ([]byte, error) { return json.Marshal(wireFromTerm(t)) }

// MarshalJSON emits the wire shape with the Type discriminator.
func (t *LegalTerm) MarshalJSON() ([]byte, error) { return json.Marshal(wireFromTerm(t)) }

// Usage returns the hourly pricing term, if present.
func (ts Terms) Usage() (*UsageTerm, bool) {
	for _, t := range ts {
		if u, ok := t.(*UsageTerm); ok {
			return u, true
		}
	}
	return nil, false
}

// ConfigurableUpfront returns the annual pricing term, if present.
func (ts Terms) ConfigurableUpfront() (*ConfigurableUpfrontTerm, bool) {
	for _, t := range ts {
		if u, ok := t.(*ConfigurableUpfrontTerm); ok {
			return u, true
		}
	}
	return nil, false
}

// RecurringPayment returns the monthly subscription term, if present.
func (ts Terms) RecurringPayment() (*RecurringPaymentTerm, bool) {
	for _, t := range ts {
		if r, ok := t.(*RecurringPaymentTerm); ok {
			return r, true
		}
	}
	return nil, false
}

// PricingType classifies the pricing shape expressed by the term list.
func (ts Terms) PricingType() PricingType {
	if _, ok := ts.ConfigurableUpfront(); ok {
		return PricingHourlyWithAnnual
	}
	if _, ok := ts.RecurringPayment(); ok {
		return PricingHourlyWithMonthly
	}
	return PricingHourly
}

// Validate enforces the term shape invariant: at most one of the annual
// and monthly-subscription terms may coexist with the hourly term.
func (ts Terms) Validate() error {
	_, hasAnnual := ts.ConfigurableUpfront()
	_, hasMonthly := ts.RecurringPayment()
	if hasAnnual && hasMonthly {
		return errors.NewValidationError("Terms", nil,
			"annual and monthly-subscription pricing cannot be combined in one offer")
	}
	return nil
}

// IsPricingTerm reports whether the term carries pricing information.
func IsPricingTerm(t Term) bool {
	switch t.(type) {
	case *UsageTerm, *ConfigurableUpfrontTerm, *RecurringPaymentTerm:
		return true
	}
	return false
}

// PricingType is the coarse pricing shape of an offer.
type PricingType int

// Pricing shapes an AMI offer can take.
const (
	PricingHourly PricingType = iota + 1
	PricingHourlyWithAnnual
	PricingHourlyWithMonthly
)

func (p PricingType) String() string {
	switch p {
	case PricingHourly:
		return "hourly"
	case PricingHourlyWithAnnual:
		return "hourly with annual"
	case PricingHourlyWithMonthly:
		return "hourly with monthly subscription"
	default:
		return "unknown"
	}
}
