package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/repo-catalog/internal/domain"
	"github.com/naka-gawa/repo-catalog/internal/format"
	"github.com/naka-gawa/repo-catalog/internal/usecase"
)

var showCmd = &cobra.Command{
	Use:   "show NAME...",
	Short: "Shows repository details with bookmark state",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		fetcher, err := newFetcher()
		if err != nil {
			return err
		}
		store, kv, err := openBookmarks()
		if err != nil {
			return err
		}
		defer kv.Close()

		inspector := usecase.NewInspector(fetcher, store, logger)
		views, err := inspector.Inspect(cmd.Context(), args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			for _, v := range views {
				v.Repository.Description = format.SanitizeHTML(v.Repository.Description)
			}
			return printJSON(out, views)
		}
		for i, v := range views {
			if i > 0 {
				fmt.Fprintln(out)
			}
			writeDetail(out, v, time.Now())
		}
		return nil
	},
}

func writeDetail(w io.Writer, v *domain.RepositoryView, now time.Time) {
	r := v.Repository
	fmt.Fprintln(w, r.FullName)
	fmt.Fprintf(w, "  %s\n", format.StripHTML(r.Description))

	license := r.LicenseName()
	if license == "" {
		license = "None"
	}
	topics := "None"
	if len(r.Topics) > 0 {
		topics = strings.Join(r.Topics, ", ")
	}
	rows := [][2]string{
		{"Language", r.Language},
		{"Stars", format.Number(int64(r.StargazersCount), 0, false)},
		{"Forks", format.Number(int64(r.ForksCount), 0, false)},
		{"Watchers", format.Number(int64(r.WatchersCount), 0, false)},
		{"Issues", format.Number(int64(r.OpenIssuesCount), 0, false)},
		{"License", license},
		{"Created", format.DateTime(r.CreatedAt)},
		{"Updated", format.RelativeDate(r.UpdatedAt, now)},
		{"Topics", topics},
		{"Private", fmt.Sprint(r.IsPrivate)},
		{"Archived", fmt.Sprint(r.IsArchived)},
		{"Bookmarked", fmt.Sprint(v.Bookmarked)},
		{"URL", r.HTMLURL},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-11s %s\n", row[0]+":", row[1])
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("json", false, "Print the repositories as JSON")
}
