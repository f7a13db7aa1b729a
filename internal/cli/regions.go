package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the regions of the dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset()
		if err != nil {
			return err
		}
		table, err := loadTable(cmd.Context(), ds)
		if err != nil {
			return err
		}

		for _, key := range table.Keys(ds.KeyColumn) {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
