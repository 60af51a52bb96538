package tlp

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrEmptyCatalog is returned when the property catalog has no records at all;
// the base cost per property would be undefined.
var ErrEmptyCatalog = errors.New("no properties found in the catalog")

// Property is one classified catalog record as the engine consumes it.
type Property struct {
	ID              string
	ContributorName string
	Usage           string
	Activity        string
}

// ItemResult is the calculated tariff outcome for a single property.
type ItemResult struct {
	PropertyID      string
	ContributorName string
	Usage           string
	Activity        string
	Factor          decimal.Decimal
	Gross           decimal.Decimal
	Calculated      decimal.Decimal
	Exempt          bool
	ExemptionReason *string
}

// Totals accumulates run-level figures while the items are produced.
type Totals struct {
	Properties int
	Exempt     int
	Sum        decimal.Decimal
}

// Engine computes per-property tariffs from a frozen parameter snapshot.
// It has no side effects: given the same snapshot, exemption map and catalog
// contents it emits the same item set, in catalog order.
type Engine struct {
	factors FactorTable
}

// NewEngine builds an engine over the given factor table. Passing nil uses
// DefaultFactors.
func NewEngine(factors FactorTable) *Engine {
	if factors == nil {
		factors = DefaultFactors()
	}
	return &Engine{factors: factors}
}

// Calculate distributes the snapshot's effective cost uniformly across the
// catalog, applies the usage factor, resolves exemptions and clamps the
// result to the snapshot's limits. Exempt properties always calculate to
// exactly zero.
//
// exemptions maps property id to the recorded reason; an empty reason keeps
// the item exempt with no reason text.
func (e *Engine) Calculate(snap Snapshot, exemptions map[string]string, catalog []Property) ([]ItemResult, Totals, error) {
	if len(catalog) == 0 {
		return nil, Totals{}, ErrEmptyCatalog
	}

	cost := snap.EffectiveCost()
	limitMin, limitMax := snap.Limits()
	basePerProperty := cost.Div(decimal.NewFromInt(int64(len(catalog))))

	results := make([]ItemResult, 0, len(catalog))
	totals := Totals{Properties: len(catalog), Sum: decimal.Zero}

	for _, prop := range catalog {
		usage := NormalizeUsage(prop.Usage)
		factor := e.factors.Factor(usage)
		gross := basePerProperty.Mul(factor)

		reason, exempt := exemptions[prop.ID]
		var reasonText *string
		if exempt && reason != "" {
			r := reason
			reasonText = &r
		}

		// Public and philanthropic properties are exempt even without an
		// explicit record; an explicit reason still wins over the default.
		if ImplicitlyExempt(usage) {
			exempt = true
			if reasonText == nil {
				r := DefaultExemptionReason
				reasonText = &r
			}
		}

		var calculated decimal.Decimal
		if exempt {
			calculated = decimal.Zero
			totals.Exempt++
		} else {
			calculated = clamp(gross, limitMin, limitMax)
		}
		totals.Sum = totals.Sum.Add(calculated)

		results = append(results, ItemResult{
			PropertyID:      prop.ID,
			ContributorName: prop.ContributorName,
			Usage:           usage,
			Activity:        prop.Activity,
			Factor:          factor,
			Gross:           gross,
			Calculated:      calculated,
			Exempt:          exempt,
			ExemptionReason: reasonText,
		})
	}

	return results, totals, nil
}

func clamp(v, min, max decimal.Decimal) decimal.Decimal {
	if v.LessThan(min) {
		return min
	}
	if v.GreaterThan(max) {
		return max
	}
	return v
}
