// Package timeseries provides daily count series and the wide tables they
// are read from.
//
// # Loading a Table
//
// Time-series CSV files in the Johns Hopkins CSSE layout hold one row per
// region and one column per reporting date:
//
//	table, err := timeseries.LoadCSV("time_series_covid19_confirmed_global.csv", nil)
//
// Rows for the same region are summed with Aggregate:
//
//	countries, err := table.Aggregate("Country/Region")
//	row, err := countries.Row("Country/Region", "Italy")
//
// # Series
//
// A Row maps date labels to cumulative counts. FromRow parses the labels
// and orders the entries by date:
//
//	series, err := timeseries.FromRow("Italy", row)
//	date, count := series.Last()
//
// # Day-over-day Changes
//
// Diff returns a Delta aligned with the series. The first point has no
// prior day, so HasPrior is false and Floats reports it as NaN:
//
//	delta := series.Diff()
//	values := delta.Floats() // [NaN, ...]
//	peak, ok := delta.Max()
//
// # Export
//
// SaveCSV writes a series, its delta and any extra aligned columns:
//
//	err := timeseries.SaveCSV(w, series, delta,
//	    timeseries.Column{Name: "smoothed_count", Values: smoothed},
//	)
package timeseries
