package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/repo-catalog/internal/export"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarizes the repository collection and outputs as JSON",
	Long:  `Computes repository counts, visibility, language distribution and star, fork and issue totals over the filtered collection, and outputs the result in JSON format.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")

		ctrl, err := loadCatalog(cmd.Context(), search)
		if err != nil {
			return err
		}
		defer ctrl.Unmount()

		return printJSON(cmd.OutOrStdout(), export.Stats(ctrl.Filtered()))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("search", "s", "", "Only include repositories matching this search")
}
