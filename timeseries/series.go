// Package timeseries provides daily count series and the tables they come from.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Series represents a daily series of cumulative counts.
type Series struct {
	Dates  []time.Time
	Counts []int64
	Name   string
}

// Row maps date labels to cumulative counts for a single region.
type Row map[string]int64

// New creates a series from dates and counts.
// Dates must be strictly increasing and counts non-negative.
func New(name string, dates []time.Time, counts []int64) (*Series, error) {
	if len(dates) != len(counts) {
		return nil, errors.New("dates and counts must have the same length")
	}
	for i := range dates {
		if counts[i] < 0 {
			return nil, fmt.Errorf("negative count %d on %s", counts[i], dates[i].Format("2006-01-02"))
		}
		if i > 0 && !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("dates not strictly increasing at %s", dates[i].Format("2006-01-02"))
		}
	}
	return &Series{
		Dates:  dates,
		Counts: counts,
		Name:   name,
	}, nil
}

// FromRow parses the labels of row and returns the entries as a
// date-ordered series. Labels that do not parse, duplicate dates and
// negative counts are errors.
func FromRow(name string, row Row) (*Series, error) {
	type entry struct {
		date  time.Time
		count int64
	}

	entries := make([]entry, 0, len(row))
	seen := make(map[time.Time]string, len(row))
	for label, count := range row {
		date, err := ParseDate(label)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[date]; ok {
			return nil, fmt.Errorf("labels %q and %q name the same date", prev, label)
		}
		seen[date] = label
		entries = append(entries, entry{date: date, count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].date.Before(entries[j].date)
	})

	dates := make([]time.Time, len(entries))
	counts := make([]int64, len(entries))
	for i, e := range entries {
		dates[i] = e.date
		counts[i] = e.count
	}
	return New(name, dates, counts)
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Counts)
}

// Values returns the counts as floats, for smoothing and plotting.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.Counts))
	for i, c := range s.Counts {
		out[i] = float64(c)
	}
	return out
}

// First returns the first date and count. It panics on an empty series.
func (s *Series) First() (time.Time, int64) {
	return s.Dates[0], s.Counts[0]
}

// Last returns the last date and count. It panics on an empty series.
func (s *Series) Last() (time.Time, int64) {
	n := len(s.Counts) - 1
	return s.Dates[n], s.Counts[n]
}

// Max returns the largest count, or zero for an empty series.
func (s *Series) Max() int64 {
	var max int64
	for _, c := range s.Counts {
		if c > max {
			max = c
		}
	}
	return max
}

// Mean calculates the arithmetic mean of the counts.
func (s *Series) Mean() float64 {
	if len(s.Counts) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, c := range s.Counts {
		sum += float64(c)
	}
	return sum / float64(len(s.Counts))
}

// Diff calculates the day-over-day difference of the series.
// The result is aligned with s: element 0 has no prior value.
func (s *Series) Diff() *Delta {
	points := make([]Point, len(s.Counts))
	for i := range s.Counts {
		points[i].Date = s.Dates[i]
		if i == 0 {
			continue
		}
		points[i].Value = s.Counts[i] - s.Counts[i-1]
		points[i].HasPrior = true
	}
	return &Delta{
		Points: points,
		Name:   s.Name + "_delta",
	}
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Counts) {
		end = len(s.Counts)
	}
	if start >= end {
		return &Series{Name: s.Name}
	}

	counts := make([]int64, end-start)
	copy(counts, s.Counts[start:end])

	dates := make([]time.Time, end-start)
	copy(dates, s.Dates[start:end])

	return &Series{
		Dates:  dates,
		Counts: counts,
		Name:   s.Name,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	return s.Slice(0, len(s.Counts))
}
