package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exports the filtered repository collection to CSV and/or JSON files",
	Long: `Exports every repository matching the search, not only the first page, to
<base>_<yyyy-mm-dd>.csv and/or .json in the output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		search, _ := cmd.Flags().GetString("search")
		dir, _ := cmd.Flags().GetString("out")
		base, _ := cmd.Flags().GetString("base")
		if dir == "" {
			dir = cfg.ExportDir
		}

		var formats []export.Format
		switch formatFlag {
		case "csv":
			formats = []export.Format{export.FormatCSV}
		case "json":
			formats = []export.Format{export.FormatJSON}
		case "both":
			formats = []export.Format{export.FormatCSV, export.FormatJSON}
		default:
			return fmt.Errorf("invalid --format %q (want csv, json or both)", formatFlag)
		}

		ctrl, err := loadCatalog(cmd.Context(), search)
		if err != nil {
			return err
		}
		defer ctrl.Unmount()

		repos := ctrl.Filtered()
		now := time.Now()
		for _, f := range formats {
			path, err := export.Write(dir, base, f, repos, now)
			if err != nil {
				return err
			}
			logger.Info("exported repositories", zap.String("path", path), zap.Int("count", len(repos)))
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "both", "Export format: csv, json or both")
	exportCmd.Flags().StringP("search", "s", "", "Only export repositories matching this search")
	exportCmd.Flags().String("out", "", "Output directory (default CATALOG_EXPORT_DIR)")
	exportCmd.Flags().String("base", export.DefaultBase, "File name stem")
}
