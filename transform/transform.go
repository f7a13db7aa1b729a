// Package transform turns a region's row of cumulative counts into a
// thresholded series, its day-over-day changes, smoothed curves and a
// summary of the trend since the peak.
package transform

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/epitrend/stats"
	"github.com/sartorproj/epitrend/timeseries"
)

// Config holds the parameters of a transform.
type Config struct {
	MinCount        int64   // first day kept is the first with at least this many
	CumulativeSigma float64 // Gaussian width for the cumulative curve
	DeltaSigma      float64 // Gaussian width for the delta curve
	RegionKey       string  // column the source table is aggregated on
}

// DefaultConfig returns the configuration used for the global confirmed
// cases dataset.
func DefaultConfig() Config {
	return Config{
		MinCount:        1,
		CumulativeSigma: 3,
		DeltaSigma:      3,
		RegionKey:       "Country/Region",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MinCount < 1 {
		return fmt.Errorf("min count must be at least 1, got %d", c.MinCount)
	}
	if !(c.CumulativeSigma > 0) || math.IsInf(c.CumulativeSigma, 0) {
		return fmt.Errorf("cumulative sigma must be positive, got %v", c.CumulativeSigma)
	}
	if !(c.DeltaSigma > 0) || math.IsInf(c.DeltaSigma, 0) {
		return fmt.Errorf("delta sigma must be positive, got %v", c.DeltaSigma)
	}
	return nil
}

// FilterByThreshold parses the row into a date-ordered series and keeps the
// days whose count is at least minCount. Everything before the first such
// day is discarded. If no day qualifies it returns *InsufficientDataError.
func FilterByThreshold(row timeseries.Row, minCount int64) (*timeseries.Series, error) {
	return filterByThreshold("", row, minCount)
}

func filterByThreshold(region string, row timeseries.Row, minCount int64) (*timeseries.Series, error) {
	if minCount < 1 {
		return nil, fmt.Errorf("min count must be at least 1, got %d", minCount)
	}

	all, err := timeseries.FromRow(region, row)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, all.Len())
	counts := make([]int64, 0, all.Len())
	for i, c := range all.Counts {
		if c < minCount {
			continue
		}
		dates = append(dates, all.Dates[i])
		counts = append(counts, c)
	}
	if len(counts) == 0 {
		return nil, &InsufficientDataError{Region: region, MinCount: minCount}
	}

	return timeseries.New(region, dates, counts)
}

// ComputeDelta returns the day-over-day changes of series. The result has
// the same length; its first point is marked as having no prior value.
func ComputeDelta(series *timeseries.Series) (*timeseries.Delta, error) {
	if series == nil || series.Len() == 0 {
		return nil, errors.New("cannot compute delta of an empty series")
	}
	return series.Diff(), nil
}

// Smooth applies a Gaussian filter of width sigma with reflected edges.
// The output has the same length as values. Leading NaNs, such as the
// undefined first delta, stay NaN and are excluded from the convolution.
func Smooth(values []float64, sigma float64) ([]float64, error) {
	start := 0
	for start < len(values) && math.IsNaN(values[start]) {
		start++
	}

	smoothed, err := stats.GaussianFilter1D(values[start:], sigma, stats.Reflect)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	for i := 0; i < start; i++ {
		out[i] = math.NaN()
	}
	copy(out[start:], smoothed)
	return out, nil
}

// TrendSummary describes the day-over-day changes of a series relative to
// their peak.
type TrendSummary struct {
	FirstDate time.Time

	PeakDate  time.Time
	PeakIndex int
	PeakValue int64

	LatestDate       time.Time
	LatestIndex      int
	LatestValue      int64
	LatestCumulative int64

	// PercentChangeSincePeak is (LatestValue - PeakValue) / PeakValue * 100,
	// undefined when PeakValue is zero.
	PercentChangeSincePeak Percent
	IsDeclining            bool

	// SwingDown is PeakValue - LatestValue.
	SwingDown int64
	// PeakSpanDays counts the days from the peak through the latest day,
	// both included.
	PeakSpanDays int
	// SlopeSincePeak is the average change in the delta per day over the span.
	SlopeSincePeak float64
}

// SummarizeTrend finds the peak of delta and compares the latest change
// with it. The first point of delta is never a candidate for the peak;
// ties go to the earliest day. A delta with no defined point returns
// ErrTrendUndefined.
func SummarizeTrend(series *timeseries.Series, delta *timeseries.Delta) (*TrendSummary, error) {
	if series == nil || delta == nil || series.Len() == 0 {
		return nil, errors.New("cannot summarize an empty series")
	}
	if delta.Len() != series.Len() {
		return nil, fmt.Errorf("delta length %d does not match series length %d", delta.Len(), series.Len())
	}

	peak, ok := delta.Max()
	if !ok {
		return nil, ErrTrendUndefined
	}

	latest := delta.Len() - 1
	peakPoint := delta.Points[peak]
	latestPoint := delta.Points[latest]
	firstDate, _ := series.First()
	_, latestCumulative := series.Last()

	span := latest - peak + 1
	return &TrendSummary{
		FirstDate:              firstDate,
		PeakDate:               peakPoint.Date,
		PeakIndex:              peak,
		PeakValue:              peakPoint.Value,
		LatestDate:             latestPoint.Date,
		LatestIndex:            latest,
		LatestValue:            latestPoint.Value,
		LatestCumulative:       latestCumulative,
		PercentChangeSincePeak: PercentOf(latestPoint.Value, peakPoint.Value),
		IsDeclining:            peakPoint.Date.Before(latestPoint.Date),
		SwingDown:              peakPoint.Value - latestPoint.Value,
		PeakSpanDays:           span,
		SlopeSincePeak:         float64(latestPoint.Value-peakPoint.Value) / float64(span),
	}, nil
}

// Result bundles everything derived from one region's row.
type Result struct {
	Region             string
	Series             *timeseries.Series
	Delta              *timeseries.Delta
	SmoothedCumulative []float64
	SmoothedDelta      []float64
	// Trend is nil when the series has a single day.
	Trend *TrendSummary
}

// Transformer runs the full transform with a fixed configuration.
type Transformer struct {
	cfg Config
}

// New creates a Transformer after validating cfg.
func New(cfg Config) (*Transformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Transformer{cfg: cfg}, nil
}

// Config returns the transformer's configuration.
func (t *Transformer) Config() Config {
	return t.cfg
}

// Transform filters, differences, smooths and summarizes row.
// *InsufficientDataError is returned unchanged so callers can skip region.
func (t *Transformer) Transform(region string, row timeseries.Row) (*Result, error) {
	series, err := filterByThreshold(region, row, t.cfg.MinCount)
	if err != nil {
		return nil, err
	}

	delta, err := ComputeDelta(series)
	if err != nil {
		return nil, err
	}

	smoothedCumulative, err := Smooth(series.Values(), t.cfg.CumulativeSigma)
	if err != nil {
		return nil, fmt.Errorf("smoothing cumulative counts: %w", err)
	}
	smoothedDelta, err := Smooth(delta.Floats(), t.cfg.DeltaSigma)
	if err != nil {
		return nil, fmt.Errorf("smoothing delta: %w", err)
	}

	trend, err := SummarizeTrend(series, delta)
	if err != nil && !errors.Is(err, ErrTrendUndefined) {
		return nil, err
	}

	return &Result{
		Region:             region,
		Series:             series,
		Delta:              delta,
		SmoothedCumulative: smoothedCumulative,
		SmoothedDelta:      smoothedDelta,
		Trend:              trend,
	}, nil
}
