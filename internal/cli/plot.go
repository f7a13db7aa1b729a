package cli

import (
	"fmt"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/sartorproj/epitrend/annotate"
	"github.com/sartorproj/epitrend/render"
	"github.com/sartorproj/epitrend/timeseries"
	"github.com/sartorproj/epitrend/transform"
)

var plotCmd = &cobra.Command{
	Use:   "plot [regions...]",
	Short: "Render cumulative and daily-change charts",
	Long: `Render, for every region, a chart of the cumulative counts and a chart of
the day-over-day change, each with its Gaussian-smoothed curve and the peak
and decline annotations. With --csv the series are also exported as CSV.

Without arguments the configured regions, or the dataset defaults, are used.

Examples:
  epitrend plot Italy Spain
  epitrend plot -d deaths_us -o out -f svg Illinois
  epitrend plot --csv --sigma 2 US`,
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)

	flags := plotCmd.Flags()
	flags.StringP("out-dir", "o", "", "directory the charts are written to (default \"charts\")")
	flags.StringP("format", "f", "", "image format: png or svg")
	flags.Bool("csv", false, "also export each series as CSV")
	flags.Int("width", 0, "chart width in pixels")
	flags.Int("height", 0, "chart height in pixels")

	bindFlag(flags, "out-dir", "output.dir")
	bindFlag(flags, "format", "output.image")
	bindFlag(flags, "csv", "output.csv")
	bindFlag(flags, "width", "output.width")
	bindFlag(flags, "height", "output.height")
}

func runPlot(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(cfg.Output.Image)
	if err != nil {
		return err
	}
	opts := render.Options{
		Width:  cfg.Output.Width,
		Height: cfg.Output.Height,
		Format: format,
	}

	ds, items, err := transformRegions(cmd.Context(), args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, item := range items {
		if item.Skipped != nil {
			fmt.Fprintf(w, "%s: skipped (%v)\n", item.Region, item.Skipped)
			continue
		}

		notes := annotate.Build(item.Result, ds.Vocabulary, cfg.Transform.MinCount)
		paths, err := render.WriteFiles(cfg.Output.Dir, item.Result, notes, opts)
		if err != nil {
			return err
		}
		if cfg.Output.CSV {
			path, err := exportCSV(cfg.Output.Dir, item.Result)
			if err != nil {
				return err
			}
			paths = append(paths, path)
		}

		fmt.Fprintf(w, "%s: %s\n", item.Region, notes.LatestLine)
		for _, p := range paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
		logger.Info("region plotted", "region", item.Region, "files", len(paths))
	}
	return nil
}

// exportCSV writes res as <dir>/<slug>.csv with its smoothed curves.
func exportCSV(dir string, res *transform.Result) (string, error) {
	path := filepath.Join(dir, render.Slug(res.Region)+".csv")
	err := timeseries.SaveCSVFile(path, res.Series, res.Delta,
		timeseries.Column{Name: "smoothed_count", Values: res.SmoothedCumulative},
		timeseries.Column{Name: "smoothed_delta", Values: res.SmoothedDelta},
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to export series", goerr.V("path", path))
	}
	return path, nil
}
