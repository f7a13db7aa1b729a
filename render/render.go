// Package render draws a region's cumulative and delta charts with go-chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sartorproj/epitrend/annotate"
	"github.com/sartorproj/epitrend/transform"
)

// Format is an image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat parses "png" or "svg".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	default:
		return "", goerr.New("unsupported image format", goerr.V("format", s))
	}
}

func (f Format) provider() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

// Options controls chart size and format.
type Options struct {
	Width  int
	Height int
	Format Format
}

// DefaultOptions returns 1024x400 PNG output.
func DefaultOptions() Options {
	return Options{
		Width:  1024,
		Height: 400,
		Format: PNG,
	}
}

// ErrNoDelta is returned when a series has no defined day-over-day change
// to draw.
var ErrNoDelta = errors.New("no day-over-day change to draw")

var (
	smoothColor  = chart.ColorRed
	pointColor   = chart.ColorBlack
	deltaColor   = chart.ColorBlue
	peakColor    = chart.ColorBlack
	declineColor = chart.ColorGreen
)

// pointStyle renders points only, with no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col,
	}
}

func dayFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return ""
}

// paddedRange returns a y range covering values, widened when flat so
// go-chart never sees a zero-height range.
func paddedRange(values ...[]float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if hi-lo < 1 {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func xRange(n int) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: 0, Max: math.Max(float64(n-1), 1)}
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", "; ")
}

// caption draws text in the top-left corner of the canvas.
func caption(text string) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		chart.Style{
			Font:      defaults.Font,
			FontSize:  7,
			FontColor: chart.ColorAlternateGray,
		}.WriteTextOptionsToRenderer(r)
		r.Text(text, box.Left+6, box.Top+12)
	}
}

// Cumulative builds the chart of cumulative counts: one dot per day and the
// smoothed curve in red.
func Cumulative(res *transform.Result, notes annotate.Annotations, opts Options) chart.Chart {
	n := res.Series.Len()
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	ys := res.Series.Values()

	ch := chart.Chart{
		Title:      oneLine(notes.Title),
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           notes.XLabel,
			Range:          xRange(n),
			ValueFormatter: dayFormatter,
		},
		YAxis: chart.YAxis{
			Name:           notes.YLabel,
			Range:          paddedRange(ys, res.SmoothedCumulative),
			ValueFormatter: chart.IntValueFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Daily total",
				Style:   pointStyle(pointColor),
				XValues: xs,
				YValues: ys,
			},
			chart.ContinuousSeries{
				Name:    "Smoothed",
				Style:   chart.Style{StrokeColor: smoothColor, StrokeWidth: 2},
				XValues: xs,
				YValues: res.SmoothedCumulative,
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if notes.Credit != "" {
		ch.Elements = append(ch.Elements, caption(notes.Credit))
	}
	return ch
}

// Delta builds the chart of day-over-day changes: a filled area of the
// raw changes, the smoothed curve in red, and notes on the peak and any
// decline. The undefined first day is left out. It returns ErrNoDelta for
// a single-day series.
func Delta(res *transform.Result, notes annotate.Annotations, opts Options) (chart.Chart, error) {
	n := res.Delta.Len()
	var xs, ys, smooth []float64
	for i, p := range res.Delta.Points {
		if !p.HasPrior {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, float64(p.Value))
		smooth = append(smooth, res.SmoothedDelta[i])
	}
	if len(xs) == 0 {
		return chart.Chart{}, ErrNoDelta
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name: "New per day",
			Style: chart.Style{
				StrokeColor: deltaColor,
				StrokeWidth: 1,
				FillColor:   deltaColor.WithAlpha(96),
			},
			XValues: xs,
			YValues: ys,
		},
		chart.ContinuousSeries{
			Name:    "Smoothed",
			Style:   chart.Style{StrokeColor: smoothColor, StrokeWidth: 2},
			XValues: xs,
			YValues: smooth,
		},
	}

	var annotations []chart.Value2
	if notes.Peak != nil {
		annotations = append(annotations, chart.Value2{
			XValue: notes.Peak.X,
			YValue: notes.Peak.Y,
			Label:  oneLine(notes.Peak.Text),
			Style:  chart.Style{StrokeColor: peakColor, FontColor: peakColor},
		})
	}
	if notes.Decline != nil {
		annotations = append(annotations, chart.Value2{
			XValue: notes.Decline.X,
			YValue: notes.Decline.Y,
			Label:  oneLine(notes.Decline.Text),
			Style:  chart.Style{StrokeColor: declineColor, FontColor: declineColor},
		})
	}
	if len(annotations) > 0 {
		series = append(series, chart.AnnotationSeries{
			Name:        "Notes",
			Annotations: annotations,
		})
	}

	ch := chart.Chart{
		Title:      oneLine(notes.Title),
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           notes.XLabel,
			Range:          xRange(n),
			ValueFormatter: dayFormatter,
		},
		YAxis: chart.YAxis{
			Name:           notes.DeltaLabel,
			Range:          paddedRange(ys, smooth),
			ValueFormatter: chart.IntValueFormatter,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch, nil
}

// RenderCumulative writes the cumulative chart to w.
func RenderCumulative(w io.Writer, res *transform.Result, notes annotate.Annotations, opts Options) error {
	ch := Cumulative(res, notes, opts)
	if err := ch.Render(opts.Format.provider(), w); err != nil {
		return goerr.Wrap(err, "failed to render cumulative chart", goerr.V("region", res.Region))
	}
	return nil
}

// RenderDelta writes the delta chart to w.
func RenderDelta(w io.Writer, res *transform.Result, notes annotate.Annotations, opts Options) error {
	ch, err := Delta(res, notes, opts)
	if err != nil {
		return err
	}
	if err := ch.Render(opts.Format.provider(), w); err != nil {
		return goerr.Wrap(err, "failed to render delta chart", goerr.V("region", res.Region))
	}
	return nil
}

// Slug turns a region name into a file name stem.
func Slug(region string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(region) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// WriteFiles renders both charts into dir as <slug>_cumulative.<ext> and
// <slug>_delta.<ext> and returns the paths written. The delta chart is
// skipped for a single-day series.
func WriteFiles(dir string, res *transform.Result, notes annotate.Annotations, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
	}

	stem := filepath.Join(dir, Slug(res.Region))
	ext := string(opts.Format)

	var written []string
	cumulative := fmt.Sprintf("%s_cumulative.%s", stem, ext)
	if err := writeFile(cumulative, func(w io.Writer) error {
		return RenderCumulative(w, res, notes, opts)
	}); err != nil {
		return written, err
	}
	written = append(written, cumulative)

	delta := fmt.Sprintf("%s_delta.%s", stem, ext)
	err := writeFile(delta, func(w io.Writer) error {
		return RenderDelta(w, res, notes, opts)
	})
	if errors.Is(err, ErrNoDelta) {
		os.Remove(delta)
		return written, nil
	}
	if err != nil {
		return written, err
	}
	return append(written, delta), nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return goerr.Wrap(err, "failed to create chart file", goerr.V("path", path))
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close chart file", goerr.V("path", path))
	}
	return nil
}
