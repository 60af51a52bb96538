package tlp

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDefaultFactorsTable(t *testing.T) {
	factors := DefaultFactors()

	expected := map[string]float64{
		"RESIDENCIAL":          1.0,
		"SERVICO":              1.2,
		"COMERCIO":             1.5,
		"INDUSTRIA":            2.0,
		"PUBLICO":              0,
		"FILANTROPICO":         0,
		"PUBLICO/FILANTROPICO": 0,
	}

	assert.Len(t, factors, len(expected))
	for usage, want := range expected {
		got, ok := factors[usage]
		assert.True(t, ok, "missing classification %s", usage)
		assert.True(t, got.Equal(decimal.NewFromFloat(want)), "%s: got %s want %v", usage, got, want)
	}
}

func TestFactorUnknownClassification(t *testing.T) {
	factors := DefaultFactors()
	assert.True(t, factors.Factor("TERRENO BALDIO").Equal(decimal.NewFromInt(1)))
}

func TestNormalizeUsage(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "RESIDENCIAL"},
		{"comercio", "COMERCIO"},
		{"Industria", "INDUSTRIA"},
		{"PUBLICO/FILANTROPICO", "PUBLICO/FILANTROPICO"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeUsage(tt.raw))
	}
}

func TestImplicitlyExempt(t *testing.T) {
	assert.True(t, ImplicitlyExempt("PUBLICO"))
	assert.True(t, ImplicitlyExempt("FILANTROPICO"))
	assert.True(t, ImplicitlyExempt("PUBLICO/FILANTROPICO"))
	assert.False(t, ImplicitlyExempt("RESIDENCIAL"))
	assert.False(t, ImplicitlyExempt("COMERCIO"))
}
