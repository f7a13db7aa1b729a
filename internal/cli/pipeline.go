package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/sartorproj/epitrend/batch"
	"github.com/sartorproj/epitrend/source"
	"github.com/sartorproj/epitrend/timeseries"
	"github.com/sartorproj/epitrend/transform"
)

// dataset returns the configured dataset with the config overrides applied.
func dataset() (source.Dataset, error) {
	ds, err := source.Lookup(cfg.Dataset)
	if err != nil {
		return source.Dataset{}, err
	}
	if cfg.Transform.RegionKey != "" {
		ds.KeyColumn = cfg.Transform.RegionKey
	}
	if cfg.Transform.CumulativeSigma > 0 {
		ds.CumulativeSigma = cfg.Transform.CumulativeSigma
	}
	if cfg.Transform.DeltaSigma > 0 {
		ds.DeltaSigma = cfg.Transform.DeltaSigma
	}
	return ds, nil
}

func loadTable(ctx context.Context, ds source.Dataset) (*timeseries.Table, error) {
	logger.Debug("loading dataset", "dataset", ds.Name, "source", cfg.Source)
	table, err := source.NewLoader(cfg.HTTP.Timeout).Load(ctx, ds, cfg.Source)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded", "regions", len(table.Records), "days", len(table.Labels))
	return table, nil
}

// selectRegions picks the regions to process: arguments first, then the
// configured list, then the dataset defaults.
func selectRegions(args []string, ds source.Dataset) []string {
	switch {
	case len(args) > 0:
		return args
	case len(cfg.Regions) > 0:
		return cfg.Regions
	default:
		return ds.DefaultRegions
	}
}

// transformRegions loads the dataset and transforms the selected regions.
func transformRegions(ctx context.Context, args []string) (source.Dataset, []batch.Item, error) {
	ds, err := dataset()
	if err != nil {
		return ds, nil, err
	}

	tr, err := transform.New(transform.Config{
		MinCount:        cfg.Transform.MinCount,
		CumulativeSigma: ds.CumulativeSigma,
		DeltaSigma:      ds.DeltaSigma,
		RegionKey:       ds.KeyColumn,
	})
	if err != nil {
		return ds, nil, goerr.Wrap(err, "invalid transform configuration")
	}

	regions := selectRegions(args, ds)
	if len(regions) == 0 {
		return ds, nil, goerr.New("no regions to process", goerr.V("dataset", ds.Name))
	}

	table, err := loadTable(ctx, ds)
	if err != nil {
		return ds, nil, err
	}

	items, err := batch.Run(ctx, logger, regions, cfg.Concurrency, func(_ context.Context, region string) (*transform.Result, error) {
		row, err := table.Row(ds.KeyColumn, region)
		if err != nil {
			return nil, err
		}
		return tr.Transform(region, row)
	})
	if err != nil {
		return ds, nil, err
	}
	return ds, items, nil
}
