package transform

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/epitrend/timeseries"
)

func day(n int) time.Time {
	return time.Date(2020, 3, 1+n, 0, 0, 0, 0, time.UTC)
}

func label(n int) string {
	return day(n).Format("1/2/06")
}

func rowOf(counts ...int64) timeseries.Row {
	row := make(timeseries.Row, len(counts))
	for i, c := range counts {
		row[label(i)] = c
	}
	return row
}

func seriesOf(t *testing.T, counts ...int64) *timeseries.Series {
	t.Helper()
	dates := make([]time.Time, len(counts))
	for i := range dates {
		dates[i] = day(i)
	}
	s, err := timeseries.New("test", dates, counts)
	require.NoError(t, err)
	return s
}

func TestFilterByThreshold(t *testing.T) {
	row := timeseries.Row{"2020-03-01": 0, "2020-03-02": 1, "2020-03-03": 5}

	s, err := FilterByThreshold(row, 1)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(1), day(2)}, s.Dates)
	assert.Equal(t, []int64{1, 5}, s.Counts)
}

func TestFilterByThresholdProperties(t *testing.T) {
	row := rowOf(0, 0, 2, 3, 3, 8, 13, 21, 40)

	for _, minCount := range []int64{1, 3, 10, 40} {
		s, err := FilterByThreshold(row, minCount)
		require.NoError(t, err)

		for i := range s.Counts {
			assert.GreaterOrEqual(t, s.Counts[i], minCount)
			if i > 0 {
				assert.True(t, s.Dates[i].After(s.Dates[i-1]), "dates must increase")
			}
		}
	}
}

func TestFilterByThresholdDropsLaterDips(t *testing.T) {
	// A downward revision below the threshold drops that day too.
	s, err := FilterByThreshold(rowOf(0, 5, 4, 6), 5)
	require.NoError(t, err)

	assert.Equal(t, []int64{5, 6}, s.Counts)
	assert.Equal(t, []time.Time{day(1), day(3)}, s.Dates)
}

func TestFilterByThresholdInsufficient(t *testing.T) {
	_, err := FilterByThreshold(rowOf(0, 1, 2), 10)
	require.Error(t, err)

	var insufficient *InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(10), insufficient.MinCount)
	assert.Contains(t, err.Error(), "10")
	assert.True(t, IsInsufficientData(err))

	_, err = FilterByThreshold(timeseries.Row{}, 1)
	assert.True(t, IsInsufficientData(err))
}

func TestFilterByThresholdInvalidInput(t *testing.T) {
	_, err := FilterByThreshold(timeseries.Row{"not a date": 3}, 1)
	require.Error(t, err)
	assert.False(t, IsInsufficientData(err))

	_, err = FilterByThreshold(rowOf(1, 2), 0)
	require.Error(t, err)
	assert.False(t, IsInsufficientData(err))
}

func TestComputeDelta(t *testing.T) {
	s := seriesOf(t, 1, 3, 6, 10, 10)

	d, err := ComputeDelta(s)
	require.NoError(t, err)
	require.Equal(t, s.Len(), d.Len())

	assert.False(t, d.Points[0].HasPrior)
	for i := 1; i < d.Len(); i++ {
		assert.True(t, d.Points[i].HasPrior)
		assert.Equal(t, s.Counts[i]-s.Counts[i-1], d.Points[i].Value)
	}
	assert.Equal(t, []int64{2, 3, 4, 0}, []int64{d.Points[1].Value, d.Points[2].Value, d.Points[3].Value, d.Points[4].Value})

	_, err = ComputeDelta(&timeseries.Series{})
	assert.Error(t, err)
}

func TestSmooth(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	smoothed, err := Smooth(values, 1)
	require.NoError(t, err)
	require.Len(t, smoothed, len(values))
	assert.InDelta(t, 1.42704095, smoothed[0], 1e-6)
	assert.InDelta(t, 3.0, smoothed[2], 1e-9)

	_, err = Smooth(values, 0)
	assert.Error(t, err)
}

func TestSmoothConvergesAsSigmaShrinks(t *testing.T) {
	values := []float64{3, 9, 1, 12, 7, 7}

	maxErr := func(sigma float64) float64 {
		smoothed, err := Smooth(values, sigma)
		require.NoError(t, err)
		m := 0.0
		for i := range values {
			m = math.Max(m, math.Abs(smoothed[i]-values[i]))
		}
		return m
	}

	wide, narrow, tiny := maxErr(2), maxErr(0.2), maxErr(0.01)
	assert.Less(t, narrow, wide)
	assert.Less(t, narrow, 1e-3)
	assert.Zero(t, tiny)
}

func TestSmoothLeadingNaN(t *testing.T) {
	s := seriesOf(t, 1, 3, 6, 10, 10)

	smoothed, err := Smooth(s.Diff().Floats(), 2)
	require.NoError(t, err)
	require.Len(t, smoothed, 5)

	assert.True(t, math.IsNaN(smoothed[0]))
	for _, v := range smoothed[1:] {
		assert.False(t, math.IsNaN(v))
	}
}

func TestSummarizeTrend(t *testing.T) {
	s := seriesOf(t, 1, 3, 6, 10, 10)
	d, _ := ComputeDelta(s)

	trend, err := SummarizeTrend(s, d)
	require.NoError(t, err)

	assert.Equal(t, int64(4), trend.PeakValue)
	assert.Equal(t, 3, trend.PeakIndex)
	assert.Equal(t, day(3), trend.PeakDate)
	assert.Equal(t, int64(0), trend.LatestValue)
	assert.Equal(t, day(4), trend.LatestDate)
	assert.Equal(t, int64(10), trend.LatestCumulative)
	assert.Equal(t, day(0), trend.FirstDate)

	require.True(t, trend.PercentChangeSincePeak.Defined)
	assert.InDelta(t, -100.0, trend.PercentChangeSincePeak.Value, 1e-9)
	assert.True(t, trend.IsDeclining)

	assert.Equal(t, int64(4), trend.SwingDown)
	assert.Equal(t, 2, trend.PeakSpanDays)
	assert.InDelta(t, -2.0, trend.SlopeSincePeak, 1e-9)
}

func TestSummarizeTrendFlat(t *testing.T) {
	s := seriesOf(t, 5, 5, 5)
	d, _ := ComputeDelta(s)

	trend, err := SummarizeTrend(s, d)
	require.NoError(t, err)

	assert.Equal(t, int64(0), trend.PeakValue)
	assert.False(t, trend.PercentChangeSincePeak.Defined)
	assert.True(t, math.IsNaN(trend.PercentChangeSincePeak.Float()))
	// The first zero is the peak, so the latest day comes after it.
	assert.Equal(t, 1, trend.PeakIndex)
	assert.True(t, trend.IsDeclining)
}

func TestSummarizeTrendRising(t *testing.T) {
	s := seriesOf(t, 1, 2, 4, 8, 16)
	d, _ := ComputeDelta(s)

	trend, err := SummarizeTrend(s, d)
	require.NoError(t, err)

	assert.Equal(t, trend.LatestDate, trend.PeakDate)
	assert.False(t, trend.IsDeclining)
	assert.InDelta(t, 0.0, trend.PercentChangeSincePeak.Value, 1e-9)
	assert.Equal(t, 1, trend.PeakSpanDays)
}

func TestSummarizeTrendSingleDay(t *testing.T) {
	s := seriesOf(t, 7)
	d, _ := ComputeDelta(s)

	_, err := SummarizeTrend(s, d)
	assert.ErrorIs(t, err, ErrTrendUndefined)
}

func TestSummarizeTrendMisaligned(t *testing.T) {
	s := seriesOf(t, 1, 2, 3)
	d, _ := ComputeDelta(seriesOf(t, 1, 2))

	_, err := SummarizeTrend(s, d)
	assert.Error(t, err)
}

func TestSummarizeTrendProperties(t *testing.T) {
	// A later day that ties the peak is excluded here: the summary calls
	// that declining because the peak is the earliest maximum.
	cases := [][]int64{
		{1, 3, 6, 10, 10},
		{1, 2, 4, 8, 16},
		{2, 9, 9, 16, 17, 30},
		{1, 10, 11, 19, 20},
		{4, 4, 7, 8},
	}

	for _, counts := range cases {
		s := seriesOf(t, counts...)
		d, _ := ComputeDelta(s)
		trend, err := SummarizeTrend(s, d)
		require.NoError(t, err)

		assert.Equal(t, d.Last().Value, trend.LatestValue)

		laterAtLeastPeak := false
		for i := trend.PeakIndex + 1; i < d.Len(); i++ {
			if d.Points[i].Value >= trend.PeakValue {
				laterAtLeastPeak = true
			}
		}
		expected := !trend.PeakDate.Equal(trend.LatestDate) && !laterAtLeastPeak
		assert.Equal(t, expected, trend.IsDeclining, "counts %v", counts)
	}
}

func TestTransformer(t *testing.T) {
	tr, err := New(DefaultConfig())
	require.NoError(t, err)

	res, err := tr.Transform("Italy", rowOf(0, 0, 1, 3, 6, 10, 10))
	require.NoError(t, err)

	assert.Equal(t, "Italy", res.Region)
	assert.Equal(t, []int64{1, 3, 6, 10, 10}, res.Series.Counts)
	assert.Len(t, res.SmoothedCumulative, 5)
	assert.Len(t, res.SmoothedDelta, 5)
	assert.True(t, math.IsNaN(res.SmoothedDelta[0]))
	require.NotNil(t, res.Trend)
	assert.Equal(t, int64(4), res.Trend.PeakValue)
}

func TestTransformerSingleDay(t *testing.T) {
	tr, err := New(DefaultConfig())
	require.NoError(t, err)

	res, err := tr.Transform("Spain", rowOf(0, 0, 4))
	require.NoError(t, err)
	assert.Nil(t, res.Trend)
	assert.Equal(t, 1, res.Series.Len())
}

func TestTransformerInsufficient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinCount = 100
	tr, err := New(cfg)
	require.NoError(t, err)

	_, err = tr.Transform("Spain", rowOf(0, 1, 2))
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Spain", insufficient.Region)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min count", func(c *Config) { c.MinCount = 0 }},
		{"cumulative sigma", func(c *Config) { c.CumulativeSigma = 0 }},
		{"delta sigma", func(c *Config) { c.DeltaSigma = -1 }},
		{"nan sigma", func(c *Config) { c.DeltaSigma = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestPercent(t *testing.T) {
	p := PercentOf(0, 4)
	assert.True(t, p.Defined)
	assert.Equal(t, int64(-100), p.Rounded())
	assert.Equal(t, "-100.0%", p.String())

	b, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "-100", string(b))

	u := PercentOf(3, 0)
	assert.False(t, u.Defined)
	assert.Equal(t, "n/a", u.String())
	assert.Equal(t, int64(0), u.Rounded())

	b, err = u.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	y, err := u.MarshalYAML()
	require.NoError(t, err)
	assert.Nil(t, y)
}
