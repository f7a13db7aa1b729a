package transform

import (
	"errors"
	"fmt"
)

// InsufficientDataError is returned when no day reaches the minimum count.
// Callers processing several regions should skip the region and continue.
type InsufficientDataError struct {
	Region   string
	MinCount int64
}

func (e *InsufficientDataError) Error() string {
	if e.Region == "" {
		return fmt.Sprintf("too few data: no day reaches the minimum count of %d", e.MinCount)
	}
	return fmt.Sprintf("too few data for %s: no day reaches the minimum count of %d", e.Region, e.MinCount)
}

// IsInsufficientData reports whether err is, or wraps, an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}

// ErrTrendUndefined is returned by SummarizeTrend when the delta series has
// no defined day-over-day change, i.e. the series holds a single day.
var ErrTrendUndefined = errors.New("trend undefined: no day-over-day change available")
