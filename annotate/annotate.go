// Package annotate builds the text placed on trend charts: titles, axis
// labels, and notes on the peak and on any decline since it.
package annotate

import (
	"fmt"
	"strings"

	"github.com/sartorproj/epitrend/transform"
)

// Credit attributes the Johns Hopkins CSSE time-series data.
const Credit = "Data: Johns Hopkins University Center for Systems Science and Engineering (JHU CSSE), " +
	"https://github.com/CSSEGISandData/COVID-19"

// Vocabulary names what is being counted.
type Vocabulary struct {
	Singular string // "case"
	Plural   string // "cases"
}

// Cases and Deaths are the vocabularies of the JHU CSSE datasets.
var (
	Cases  = Vocabulary{Singular: "case", Plural: "cases"}
	Deaths = Vocabulary{Singular: "death", Plural: "deaths"}
)

// Note is a piece of text anchored at a point of the delta chart.
// X is the day index, Y the delta value.
type Note struct {
	Text string
	X, Y float64
}

// Annotations holds the text for one region's charts.
type Annotations struct {
	Title      string
	XLabel     string
	YLabel     string
	DeltaLabel string
	Credit     string
	Peak       *Note
	Decline    *Note
	LatestLine string
}

// Build derives the annotations for res.
func Build(res *transform.Result, vocab Vocabulary, minCount int64) Annotations {
	latestDate, latestCount := res.Series.Last()

	a := Annotations{
		Title:      fmt.Sprintf("%s\n%d %s on %s", res.Region, latestCount, vocab.Plural, latestDate.Format("02 January 2006")),
		XLabel:     fmt.Sprintf("Days since %d %s", minCount, pluralize(vocab, minCount)),
		YLabel:     fmt.Sprintf("Confirmed %s, N", vocab.Plural),
		DeltaLabel: "ΔN",
		Credit:     Credit,
	}

	trend := res.Trend
	if trend == nil {
		a.LatestLine = fmt.Sprintf("%s: %d %s", latestDate.Format("2006-01-02"), latestCount, vocab.Plural)
		return a
	}

	a.LatestLine = fmt.Sprintf("%s: %+d new %s", trend.LatestDate.Format("2006-01-02"), trend.LatestValue, vocab.Plural)
	a.Peak = &Note{
		Text: fmt.Sprintf("Max number of new %s\n%d on %s", vocab.Plural, trend.PeakValue, trend.PeakDate.Format("2006-01-02")),
		X:    float64(trend.PeakIndex),
		Y:    float64(trend.PeakValue),
	}
	if trend.IsDeclining {
		a.Decline = &Note{
			Text: declineText(trend, vocab),
			X:    float64(trend.PeakIndex+trend.LatestIndex) / 2,
			Y:    float64(trend.PeakValue+trend.LatestValue) / 2,
		}
	}
	return a
}

func declineText(trend *transform.TrendSummary, vocab Vocabulary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New %s declining since peak\n", vocab.Plural)
	fmt.Fprintf(&b, "Daily new %s down %d from the peak\n", vocab.Plural, trend.SwingDown)
	if trend.PercentChangeSincePeak.Defined {
		fmt.Fprintf(&b, "Change: %d%% over %d days", trend.PercentChangeSincePeak.Rounded(), trend.PeakSpanDays)
	} else {
		fmt.Fprintf(&b, "Change: n/a over %d days", trend.PeakSpanDays)
	}
	return b.String()
}

func pluralize(vocab Vocabulary, n int64) string {
	if n == 1 {
		return vocab.Singular
	}
	return vocab.Plural
}
