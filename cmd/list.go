package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/repo-catalog/internal/domain"
	"github.com/naka-gawa/repo-catalog/internal/format"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the first pages of the repository list",
	Long: `Fetches the organization's repositories, applies an optional search and prints
the visible page. Each extra page reveals another page-size worth of results,
the same way scrolling does in the browser.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		pages, _ := cmd.Flags().GetInt("pages")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctrl, err := loadCatalog(cmd.Context(), search)
		if err != nil {
			return err
		}
		defer ctrl.Unmount()

		for i := 1; i < pages; i++ {
			if !ctrl.LoadMore() {
				break
			}
		}
		snap := ctrl.Snapshot()

		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, snap.Visible)
		}
		if snap.NoResults() {
			if snap.SearchTerm != "" {
				fmt.Fprintf(out, "No repositories match %q. Try a different search term.\n", snap.SearchTerm)
			} else {
				fmt.Fprintln(out, "No repositories found")
			}
			return nil
		}
		fmt.Fprintln(out, repositoryTable(snap.Visible))
		fmt.Fprintf(out, "Showing %d of %d repositories (%d total)\n", snap.VisibleCount, snap.Matched, snap.Total)
		return nil
	},
}

func repositoryTable(repos []domain.Repository) string {
	rows := make([][]string, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Name,
			r.Language,
			format.Number(int64(r.StargazersCount), 1, true),
			format.Number(int64(r.ForksCount), 1, true),
			format.Number(int64(r.OpenIssuesCount), 1, true),
			format.Date(r.UpdatedAt),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "LANGUAGE", "STARS", "FORKS", "ISSUES", "UPDATED").
		Rows(rows...).
		String()
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("search", "s", "", "Filter by name, description or language (case-insensitive)")
	listCmd.Flags().IntP("pages", "p", 1, "Number of pages to reveal")
	listCmd.Flags().Bool("json", false, "Print the visible repositories as JSON")
}
