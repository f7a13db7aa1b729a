package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureCSV = `Province/State,Country/Region,Lat,Long,3/1/20,3/2/20,3/3/20,3/4/20,3/5/20
,Italy,41.87,12.56,1,3,6,10,10
Madrid,Spain,40.4,-3.7,0,1,2,4,5
Catalonia,Spain,41.6,1.5,0,0,1,2,3
,Tuvalu,-7.1,177.6,0,0,0,0,0
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "global.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV), 0o644))
	return path
}

// execute runs the root command from an empty working directory so no
// .epitrend.yaml is picked up.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"plot", "summary", "regions", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootUnknownCommand(t *testing.T) {
	_, err := execute(t, "nonexistent-command")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	SetBuildInfo("abc1234", "2026-10-19T00:00:00Z")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := execute(t, "version", "--short=true", "--json=false")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, err = execute(t, "version", "--short=false", "--json=true")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "abc1234", info["commit"])
}

func TestRegions(t *testing.T) {
	src := writeFixture(t)

	out, err := execute(t, "regions", "-d", "confirmed_global", "-s", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Italy", "Spain", "Tuvalu"}, strings.Fields(out))
}

func TestSummaryJSON(t *testing.T) {
	src := writeFixture(t)

	out, err := execute(t, "summary", "-d", "confirmed_global", "-s", src, "--min-count", "1",
		"-f", "json", "Italy", "Spain", "Tuvalu")
	require.NoError(t, err)

	var decoded struct {
		Dataset string `json:"dataset"`
		Regions []struct {
			Name          string   `json:"name"`
			FirstDate     string   `json:"first_date"`
			PeakDate      string   `json:"peak_date"`
			PeakValue     int64    `json:"peak_value"`
			PercentChange *float64 `json:"percent_change_since_peak"`
			Declining     bool     `json:"declining"`
		} `json:"regions"`
		Skipped []struct {
			Name string `json:"name"`
		} `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "confirmed_global", decoded.Dataset)
	require.Len(t, decoded.Regions, 2)

	italy := decoded.Regions[0]
	assert.Equal(t, "Italy", italy.Name)
	assert.Equal(t, "2020-03-04", italy.PeakDate)
	assert.Equal(t, int64(4), italy.PeakValue)
	require.NotNil(t, italy.PercentChange)
	assert.Equal(t, -100.0, *italy.PercentChange)
	assert.True(t, italy.Declining)

	spain := decoded.Regions[1]
	assert.Equal(t, "2020-03-02", spain.FirstDate, "aggregated provinces start on the first non-zero day")
	assert.Equal(t, int64(3), spain.PeakValue)
	require.NotNil(t, spain.PercentChange)
	assert.InDelta(t, -33.333, *spain.PercentChange, 1e-3)

	require.Len(t, decoded.Skipped, 1)
	assert.Equal(t, "Tuvalu", decoded.Skipped[0].Name)
}

func TestSummaryTable(t *testing.T) {
	src := writeFixture(t)

	out, err := execute(t, "summary", "-d", "confirmed_global", "-s", src, "--min-count", "1",
		"-f", "table", "--no-color", "Italy")
	require.NoError(t, err)
	assert.Contains(t, out, "Italy")
	assert.Contains(t, out, "declining")
}

func TestSummaryMinCount(t *testing.T) {
	src := writeFixture(t)

	out, err := execute(t, "summary", "-d", "confirmed_global", "-s", src, "--min-count", "6",
		"-f", "json", "Italy")
	require.NoError(t, err)

	var decoded struct {
		MinCount int64 `json:"min_count"`
		Regions  []struct {
			FirstDate string `json:"first_date"`
			Days      int    `json:"days"`
		} `json:"regions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, int64(6), decoded.MinCount)
	require.Len(t, decoded.Regions, 1)
	assert.Equal(t, "2020-03-03", decoded.Regions[0].FirstDate)
	assert.Equal(t, 3, decoded.Regions[0].Days)
}

func TestSummaryUnknownRegion(t *testing.T) {
	src := writeFixture(t)

	_, err := execute(t, "summary", "-d", "confirmed_global", "-s", src, "--min-count", "1",
		"-f", "table", "Atlantis")
	assert.Error(t, err)
}

func TestUnknownDataset(t *testing.T) {
	src := writeFixture(t)

	_, err := execute(t, "regions", "-d", "nope", "-s", src)
	assert.Error(t, err)
}

func TestPlot(t *testing.T) {
	src := writeFixture(t)
	outDir := filepath.Join(t.TempDir(), "charts")

	out, err := execute(t, "plot", "-d", "confirmed_global", "-s", src, "--min-count", "1",
		"-o", outDir, "-f", "png", "--csv", "Italy", "Tuvalu")
	require.NoError(t, err)

	for _, name := range []string{"italy_cumulative.png", "italy_delta.png", "italy.csv"} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
	assert.Contains(t, out, "Tuvalu: skipped")

	data, err := os.ReadFile(filepath.Join(outDir, "italy.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "date,count,delta,smoothed_count,smoothed_delta", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2020-03-01,1,,"))
}

func TestPlotInvalidImageFormat(t *testing.T) {
	src := writeFixture(t)

	_, err := execute(t, "plot", "-d", "confirmed_global", "-s", src, "-o", t.TempDir(), "-f", "gif", "Italy")
	assert.Error(t, err)
}
