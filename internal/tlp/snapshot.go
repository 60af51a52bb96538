package tlp

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Limits applied when a snapshot predates the updated-limit columns and does
// not carry them.
var (
	DefaultLimitMin = decimal.NewFromFloat(258.00)
	DefaultLimitMax = decimal.NewFromFloat(1600.08)
)

// Snapshot is the parameter set frozen into a simulation (and later copied
// verbatim into a launch lot) at creation time. It is captured from the
// caller's input and never re-read from the parameters table, so edits to
// parameters after creation cannot change a simulation's outcome.
//
// Optional fields are pointers: absent means "fall back", not zero.
type Snapshot struct {
	BaseCost        decimal.Decimal  `json:"custo_tlp_base"`
	FinalCost       *decimal.Decimal `json:"custo_final,omitempty"`
	IPCAPct         decimal.Decimal  `json:"ipca_percentual"`
	SubsidyPct      decimal.Decimal  `json:"subsidio_percentual"`
	LimitMinBase    decimal.Decimal  `json:"limite_min_base"`
	LimitMaxBase    decimal.Decimal  `json:"limite_max_base"`
	LimitMinUpdated *decimal.Decimal `json:"limite_min_atualizado,omitempty"`
	LimitMaxUpdated *decimal.Decimal `json:"limite_max_atualizado,omitempty"`
}

// EffectiveCost resolves the amount distributed across the catalog: the
// explicit final cost when one was recorded, otherwise the base cost.
func (s Snapshot) EffectiveCost() decimal.Decimal {
	if s.FinalCost != nil {
		return *s.FinalCost
	}
	return s.BaseCost
}

// Limits resolves the clamp range for calculated values.
func (s Snapshot) Limits() (min, max decimal.Decimal) {
	min = DefaultLimitMin
	max = DefaultLimitMax
	if s.LimitMinUpdated != nil {
		min = *s.LimitMinUpdated
	}
	if s.LimitMaxUpdated != nil {
		max = *s.LimitMaxUpdated
	}
	return min, max
}

// Value implements driver.Valuer so the snapshot persists as a JSONB column.
func (s Snapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameter snapshot: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for the JSONB column.
func (s *Snapshot) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = Snapshot{}
		return nil
	default:
		return fmt.Errorf("unsupported type %T for parameter snapshot", src)
	}
}
