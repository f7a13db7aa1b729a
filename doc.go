// Package epitrend turns cumulative daily epidemic counts into the series
// behind a "has it peaked yet" chart.
//
// Each region's cumulative counts are cut at the first day they reach a
// minimum, differenced into daily new counts, smoothed with a Gaussian
// filter, and summarized by the peak of the daily change and how far the
// latest day has fallen from it.
//
// # Quick Start
//
//	tr, _ := transform.New(transform.DefaultConfig())
//	res, err := tr.Transform("Italy", row)
//	if transform.IsInsufficientData(err) {
//	    // no day reached the minimum count
//	}
//	fmt.Println(res.Trend.PeakDate, res.Trend.PercentChangeSincePeak)
//
// # Packages
//
//   - timeseries: series, day-over-day deltas, wide CSV tables
//   - stats: Gaussian filtering
//   - transform: threshold filter, delta, smoothing, trend summary
//   - annotate: chart titles and peak/decline notes
//   - render: PNG and SVG charts
//   - source: the JHU CSSE datasets and their loader
//   - batch: concurrent per-region transforms
//   - report: summary table and JSON/YAML reports
//
// The epitrend command in cmd/epitrend wires these together.
package epitrend
