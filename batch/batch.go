// Package batch transforms many regions concurrently.
package batch

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/epitrend/transform"
)

// Task produces the transform result for one region.
type Task func(ctx context.Context, region string) (*transform.Result, error)

// Item is the outcome for one region. Exactly one of Result and Skipped
// is set.
type Item struct {
	Region  string
	Result  *transform.Result
	Skipped error
}

// Run calls task for every region with at most limit calls in flight
// (unlimited when limit < 1). Regions whose task fails with
// *transform.InsufficientDataError are logged and reported as skipped;
// any other error cancels the remaining work and is returned. Items come
// back in the order of regions.
func Run(ctx context.Context, logger *slog.Logger, regions []string, limit int, task Task) ([]Item, error) {
	if logger == nil {
		logger = slog.Default()
	}

	items := make([]Item, len(regions))
	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i, region := range regions {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := task(ctx, region)
			switch {
			case transform.IsInsufficientData(err):
				logger.Warn("skipping region", "region", region, "reason", err.Error())
				items[i] = Item{Region: region, Skipped: err}
				return nil
			case err != nil:
				return goerr.Wrap(err, "failed to process region", goerr.V("region", region))
			}

			logger.Debug("region processed", "region", region, "days", res.Series.Len())
			items[i] = Item{Region: region, Result: res}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Results returns the results of the items that were not skipped.
func Results(items []Item) []*transform.Result {
	out := make([]*transform.Result, 0, len(items))
	for _, it := range items {
		if it.Result != nil {
			out = append(out, it.Result)
		}
	}
	return out
}
