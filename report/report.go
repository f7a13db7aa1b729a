// Package report summarizes transform results as a terminal table or as
// JSON or YAML documents.
package report

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/epitrend/batch"
	"github.com/sartorproj/epitrend/transform"
)

// Region is the summary of one region.
type Region struct {
	Name             string            `json:"name" yaml:"name"`
	FirstDate        string            `json:"first_date" yaml:"first_date"`
	Days             int               `json:"days" yaml:"days"`
	LatestDate       string            `json:"latest_date" yaml:"latest_date"`
	LatestCumulative int64             `json:"latest_cumulative" yaml:"latest_cumulative"`
	PeakDate         string            `json:"peak_date,omitempty" yaml:"peak_date,omitempty"`
	PeakValue        *int64            `json:"peak_value,omitempty" yaml:"peak_value,omitempty"`
	LatestValue      *int64            `json:"latest_value,omitempty" yaml:"latest_value,omitempty"`
	PercentChange    transform.Percent `json:"percent_change_since_peak" yaml:"percent_change_since_peak"`
	Declining        bool              `json:"declining" yaml:"declining"`
	SlopeSincePeak   *float64          `json:"slope_since_peak,omitempty" yaml:"slope_since_peak,omitempty"`
}

// Skipped is a region left out of the report and why.
type Skipped struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report is the summary of one run.
type Report struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Dataset     string    `json:"dataset" yaml:"dataset"`
	MinCount    int64     `json:"min_count" yaml:"min_count"`
	Regions     []Region  `json:"regions" yaml:"regions"`
	Skipped     []Skipped `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

const dateLayout = "2006-01-02"

// New builds a report from batch items.
func New(dataset string, minCount int64, items []batch.Item) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Dataset:     dataset,
		MinCount:    minCount,
		Regions:     []Region{},
	}
	for _, it := range items {
		if it.Result == nil {
			reason := ""
			if it.Skipped != nil {
				reason = it.Skipped.Error()
			}
			r.Skipped = append(r.Skipped, Skipped{Name: it.Region, Reason: reason})
			continue
		}
		r.Regions = append(r.Regions, summarize(it.Result))
	}
	return r
}

func summarize(res *transform.Result) Region {
	first, _ := res.Series.First()
	latest, cumulative := res.Series.Last()
	reg := Region{
		Name:             res.Region,
		FirstDate:        first.Format(dateLayout),
		Days:             res.Series.Len(),
		LatestDate:       latest.Format(dateLayout),
		LatestCumulative: cumulative,
	}
	if tr := res.Trend; tr != nil {
		peak, last, slope := tr.PeakValue, tr.LatestValue, tr.SlopeSincePeak
		reg.PeakDate = tr.PeakDate.Format(dateLayout)
		reg.PeakValue = &peak
		reg.LatestValue = &last
		reg.PercentChange = tr.PercentChangeSincePeak
		reg.Declining = tr.IsDeclining
		reg.SlopeSincePeak = &slope
	}
	return reg
}

// Format is an output format for Write.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses "table", "json" or "yaml".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", goerr.New("unsupported report format", goerr.V("format", s))
	}
}

// Write encodes the report to w in the given format. The table format
// uses colors when useColors is set.
func (r *Report) Write(w io.Writer, format Format, useColors bool) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return goerr.Wrap(err, "failed to encode report as JSON")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return goerr.Wrap(err, "failed to encode report as YAML")
		}
		if err := enc.Close(); err != nil {
			return goerr.Wrap(err, "failed to flush YAML report")
		}
		return nil
	case FormatTable:
		return r.Render(w, useColors)
	default:
		return goerr.New("unsupported report format", goerr.V("format", format))
	}
}

// Render prints the report as a table.
func (r *Report) Render(w io.Writer, useColors bool) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	if !useColors {
		green.DisableColor()
		red.DisableColor()
		yellow.DisableColor()
	}

	table := newTable(w)
	table.Header([]string{"Region", "Days", "Latest", "Total", "Peak Day", "Peak", "Newest", "Change", "Trend"})

	rows := make([][]string, 0, len(r.Regions)+len(r.Skipped))
	for _, reg := range r.Regions {
		trend := "-"
		peakDate, peak, newest := "-", "-", "-"
		if reg.PeakValue != nil {
			peakDate = reg.PeakDate
			peak = strconv.FormatInt(*reg.PeakValue, 10)
			newest = strconv.FormatInt(*reg.LatestValue, 10)
			if reg.Declining {
				trend = green.Sprint("declining")
			} else {
				trend = red.Sprint("at peak")
			}
		}
		rows = append(rows, []string{
			reg.Name,
			strconv.Itoa(reg.Days),
			reg.LatestDate,
			strconv.FormatInt(reg.LatestCumulative, 10),
			peakDate,
			peak,
			newest,
			reg.PercentChange.String(),
			trend,
		})
	}
	for _, s := range r.Skipped {
		rows = append(rows, []string{s.Name, "-", "-", "-", "-", "-", "-", "-", yellow.Sprint("skipped")})
	}

	if err := table.Bulk(rows); err != nil {
		return goerr.Wrap(err, "failed to add table rows")
	}
	if err := table.Render(); err != nil {
		return goerr.Wrap(err, "failed to render table")
	}
	return nil
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}
