package tlp

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Classification values as produced by the classified catalog view.
var (
	UsageResidential         = "RESIDENCIAL"
	UsageService             = "SERVICO"
	UsageCommerce            = "COMERCIO"
	UsageIndustry            = "INDUSTRIA"
	UsagePublic              = "PUBLICO"
	UsagePhilanthropic       = "FILANTROPICO"
	UsagePublicPhilanthropic = "PUBLICO/FILANTROPICO"
)

// DefaultExemptionReason is recorded when a property is exempt only because of
// its public/philanthropic classification.
var DefaultExemptionReason = "PROPRIEDADE PÚBLICA/FILANTRÓPICA"

// FactorTable maps a usage classification to the multiplier applied over the
// uniform base cost per property.
type FactorTable map[string]decimal.Decimal

// DefaultFactors returns the factor table in effect for the municipality.
// Callers receive a fresh copy; the engine never mutates it.
func DefaultFactors() FactorTable {
	return FactorTable{
		UsageResidential:         decimal.NewFromFloat(1.0),
		UsageService:             decimal.NewFromFloat(1.2),
		UsageCommerce:            decimal.NewFromFloat(1.5),
		UsageIndustry:            decimal.NewFromFloat(2.0),
		UsagePublic:              decimal.Zero,
		UsagePhilanthropic:       decimal.Zero,
		UsagePublicPhilanthropic: decimal.Zero,
	}
}

// Factor resolves the multiplier for a classification. Unknown classifications
// use 1.0; they are charged, not exempted.
func (t FactorTable) Factor(usage string) decimal.Decimal {
	if f, ok := t[usage]; ok {
		return f
	}
	return decimal.NewFromInt(1)
}

// NormalizeUsage canonicalizes a raw classification from the catalog view.
// Unclassified properties are treated as residential.
func NormalizeUsage(raw string) string {
	if raw == "" {
		return UsageResidential
	}
	return strings.ToUpper(raw)
}

// ImplicitlyExempt reports whether a classification is exempt even without an
// explicit exemption record.
func ImplicitlyExempt(usage string) bool {
	switch usage {
	case UsagePublic, UsagePhilanthropic, UsagePublicPhilanthropic:
		return true
	}
	return false
}
