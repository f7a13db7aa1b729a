// Package source knows the JHU CSSE time-series datasets and reads them
// from a URL or a local file.
package source

import (
	"context"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/sartorproj/epitrend/annotate"
	"github.com/sartorproj/epitrend/timeseries"
)

const baseURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/" +
	"csse_covid_19_data/csse_covid_19_time_series/"

// Dataset describes a wide time-series CSV and how to aggregate it.
type Dataset struct {
	Name            string
	URL             string
	KeyColumn       string
	Vocabulary      annotate.Vocabulary
	CumulativeSigma float64
	DeltaSigma      float64

	// DefaultRegions are processed when no region is requested.
	DefaultRegions []string
}

var (
	// ConfirmedGlobal holds confirmed cases per country.
	ConfirmedGlobal = Dataset{
		Name:            "confirmed_global",
		URL:             baseURL + "time_series_covid19_confirmed_global.csv",
		KeyColumn:       "Country/Region",
		Vocabulary:      annotate.Cases,
		CumulativeSigma: 3,
		DeltaSigma:      3,
		DefaultRegions:  []string{"US", "Spain", "Italy"},
	}

	// DeathsGlobal holds deaths per country.
	DeathsGlobal = Dataset{
		Name:            "deaths_global",
		URL:             baseURL + "time_series_covid19_deaths_global.csv",
		KeyColumn:       "Country/Region",
		Vocabulary:      annotate.Deaths,
		CumulativeSigma: 3,
		DeltaSigma:      3,
		DefaultRegions:  []string{"US", "Spain", "Italy"},
	}

	// ConfirmedUS holds confirmed cases per US county.
	ConfirmedUS = Dataset{
		Name:            "confirmed_us",
		URL:             baseURL + "time_series_covid19_confirmed_US.csv",
		KeyColumn:       "Province_State",
		Vocabulary:      annotate.Cases,
		CumulativeSigma: 2,
		DeltaSigma:      2,
		DefaultRegions:  []string{"Illinois", "Florida", "Louisiana"},
	}

	// DeathsUS holds deaths per US county.
	DeathsUS = Dataset{
		Name:            "deaths_us",
		URL:             baseURL + "time_series_covid19_deaths_US.csv",
		KeyColumn:       "Province_State",
		Vocabulary:      annotate.Deaths,
		CumulativeSigma: 2,
		DeltaSigma:      2,
		DefaultRegions:  []string{"Illinois", "Florida", "Louisiana"},
	}
)

var datasets = map[string]Dataset{
	ConfirmedGlobal.Name: ConfirmedGlobal,
	DeathsGlobal.Name:    DeathsGlobal,
	ConfirmedUS.Name:     ConfirmedUS,
	DeathsUS.Name:        DeathsUS,
}

// Lookup returns the dataset registered under name.
func Lookup(name string) (Dataset, error) {
	ds, ok := datasets[name]
	if !ok {
		return Dataset{}, goerr.New("unknown dataset",
			goerr.V("name", name),
			goerr.V("known", strings.Join(Names(), ", ")))
	}
	return ds, nil
}

// Names returns the registered dataset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loader reads datasets over HTTP or from disk.
type Loader struct {
	client *http.Client
}

// NewLoader creates a Loader whose HTTP requests time out after timeout.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{client: &http.Client{Timeout: timeout}}
}

// Open returns a reader for location, which is an http(s) URL or a file path.
func (l *Loader) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open dataset file", goerr.V("path", location))
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build request", goerr.V("url", location))
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch dataset", goerr.V("url", location))
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, goerr.New("unexpected HTTP status",
			goerr.V("url", location),
			goerr.V("status", resp.StatusCode))
	}
	return resp.Body, nil
}

// Load reads the table at location, or at ds.URL when location is empty,
// and sums its rows by ds.KeyColumn.
func (l *Loader) Load(ctx context.Context, ds Dataset, location string) (*timeseries.Table, error) {
	if location == "" {
		location = ds.URL
	}

	rc, err := l.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	opts := timeseries.DefaultCSVOptions()
	opts.KeyColumns = []string{ds.KeyColumn}
	table, err := timeseries.LoadCSVFromReader(rc, opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse dataset",
			goerr.V("dataset", ds.Name),
			goerr.V("location", location))
	}

	aggregated, err := table.Aggregate(ds.KeyColumn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to aggregate dataset", goerr.V("key", ds.KeyColumn))
	}
	return aggregated, nil
}
