// Package indicator computes simple technical indicators over a series
// of reconciled prices. Values are ordered oldest to newest. These feed
// notification text only; they carry no trading semantics.
package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SMA returns the simple moving average of the last period values.
func SMA(values []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	if len(values) < period {
		return decimal.Zero, fmt.Errorf("%w: need %d values, have %d", ErrNotEnoughData, period, len(values))
	}

	window := values[len(values)-period:]
	sum := decimal.Zero
	for _, v := range window {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(period))), nil
}

// EMA returns the exponential moving average over the whole series,
// seeded with the SMA of the first period values.
func EMA(values []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	if len(values) < period {
		return decimal.Zero, fmt.Errorf("%w: need %d values, have %d", ErrNotEnoughData, period, len(values))
	}

	seed := decimal.Zero
	for _, v := range values[:period] {
		seed = seed.Add(v)
	}
	ema := seed.Div(decimal.NewFromInt(int64(period)))

	// multiplier = 2 / (period + 1)
	multiplier := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(period) + 1))
	for _, v := range values[period:] {
		ema = v.Sub(ema).Mul(multiplier).Add(ema)
	}
	return ema, nil
}

// RSI returns the relative strength index over the last period changes.
// Requires period+1 values. A series with no losses yields 100.
func RSI(values []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	if len(values) < period+1 {
		return decimal.Zero, fmt.Errorf("%w: need %d values, have %d", ErrNotEnoughData, period+1, len(values))
	}

	window := values[len(values)-period-1:]
	gains := decimal.Zero
	losses := decimal.Zero
	for i := 1; i < len(window); i++ {
		change := window[i].Sub(window[i-1])
		if change.IsPositive() {
			gains = gains.Add(change)
		} else {
			losses = losses.Add(change.Neg())
		}
	}

	if losses.IsZero() {
		return hundred, nil
	}

	avgGain := gains.Div(decimal.NewFromInt(int64(period)))
	avgLoss := losses.Div(decimal.NewFromInt(int64(period)))
	rs := avgGain.Div(avgLoss)

	// RSI = 100 - 100/(1+RS)
	return hundred.Sub(hundred.Div(decimal.NewFromInt(1).Add(rs))), nil
}
