package indicator

import "errors"

var (
	// ErrInvalidPeriod indicates a non-positive indicator period.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrNotEnoughData indicates the series is shorter than the period requires.
	ErrNotEnoughData = errors.New("not enough data")
)
