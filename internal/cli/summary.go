package cli

import (
	"github.com/spf13/cobra"

	"github.com/sartorproj/epitrend/report"
)

var noColor bool

var summaryCmd = &cobra.Command{
	Use:   "summary [regions...]",
	Short: "Print the peak and decline summary of each region",
	Long: `Print, for every region, the latest count, the peak of the daily change
and how far the daily change has fallen since the peak.

Output is a table by default, or a JSON or YAML report.

Examples:
  epitrend summary
  epitrend summary Italy Spain --format json
  epitrend summary -d deaths_us --min-count 10 Florida Louisiana`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	flags := summaryCmd.Flags()
	flags.StringP("format", "f", "", "output format: table, json or yaml")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	bindFlag(flags, "format", "output.report")
}

func runSummary(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(cfg.Output.Report)
	if err != nil {
		return err
	}

	ds, items, err := transformRegions(cmd.Context(), args)
	if err != nil {
		return err
	}

	r := report.New(ds.Name, cfg.Transform.MinCount, items)
	logger.Debug("report built", "run_id", r.RunID, "regions", len(r.Regions), "skipped", len(r.Skipped))
	return r.Write(cmd.OutOrStdout(), format, !noColor && useColors())
}
