package indicator

import "github.com/shopspring/decimal"

// Snapshot bundles indicator values computed over one history window.
// A nil field means the series was too short for that indicator.
type Snapshot struct {
	SMA *decimal.Decimal
	EMA *decimal.Decimal
	RSI *decimal.Decimal
}

// Compute evaluates all indicators over the series, skipping any the
// series is too short for.
func Compute(values []decimal.Decimal, smaPeriod, emaPeriod, rsiPeriod int) Snapshot {
	var snap Snapshot
	if v, err := SMA(values, smaPeriod); err == nil {
		snap.SMA = &v
	}
	if v, err := EMA(values, emaPeriod); err == nil {
		snap.EMA = &v
	}
	if v, err := RSI(values, rsiPeriod); err == nil {
		snap.RSI = &v
	}
	return snap
}
