package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/repo-catalog/internal/bookmark"
	"github.com/naka-gawa/repo-catalog/internal/domain"
	"github.com/naka-gawa/repo-catalog/internal/format"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manages locally saved repositories",
}

// withBookmarks opens the store for the duration of fn.
func withBookmarks(fn func(cmd *cobra.Command, args []string, store *bookmark.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, kv, err := openBookmarks()
		if err != nil {
			return err
		}
		defer kv.Close()
		return fn(cmd, args, store)
	}
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add NAME...",
	Short: "Fetches and bookmarks repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, store *bookmark.Store) error {
		fetcher, err := newFetcher()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range args {
			repo, err := fetcher.GetOne(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", name, err)
			}
			if store.Add(repo) {
				fmt.Fprintf(out, "Bookmarked %s\n", repo.FullName)
			} else {
				fmt.Fprintf(out, "%s is already bookmarked\n", repo.FullName)
			}
		}
		return nil
	}),
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "remove NAME|ID...",
	Short: "Removes bookmarks by repository name, full name or id",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, store *bookmark.Store) error {
		out := cmd.OutOrStdout()
		for _, arg := range args {
			b, ok := findBookmark(store.List(), arg)
			if !ok || !store.Remove(b.ID) {
				fmt.Fprintf(out, "%s is not bookmarked\n", arg)
				continue
			}
			fmt.Fprintf(out, "Removed %s\n", b.FullName)
		}
		return nil
	}),
}

func findBookmark(bookmarks []domain.Bookmark, key string) (domain.Bookmark, bool) {
	id, idErr := strconv.ParseInt(key, 10, 64)
	for _, b := range bookmarks {
		if b.Name == key || b.FullName == key || (idErr == nil && b.ID == id) {
			return b, true
		}
	}
	return domain.Bookmark{}, false
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists bookmarks in the order they were added",
	Args:  cobra.NoArgs,
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, store *bookmark.Store) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		bookmarks := store.List()
		out := cmd.OutOrStdout()
		if asJSON {
			return printJSON(out, bookmarks)
		}
		if len(bookmarks) == 0 {
			fmt.Fprintln(out, "No bookmarks")
			return nil
		}
		fmt.Fprintln(out, bookmarkTable(bookmarks, time.Now()))
		return nil
	}),
}

func bookmarkTable(bookmarks []domain.Bookmark, now time.Time) string {
	rows := make([][]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10),
			b.FullName,
			b.Language,
			format.Number(int64(b.StargazersCount), 1, true),
			format.RelativeDate(b.BookmarkedAt, now),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "REPOSITORY", "LANGUAGE", "STARS", "BOOKMARKED").
		Rows(rows...).
		String()
}

var bookmarkCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Prints the number of bookmarks",
	Args:  cobra.NoArgs,
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, store *bookmark.Store) error {
		fmt.Fprintln(cmd.OutOrStdout(), store.Count())
		return nil
	}),
}

var bookmarkClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Removes every bookmark",
	Args:  cobra.NoArgs,
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, store *bookmark.Store) error {
		store.Clear()
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared all bookmarks")
		return nil
	}),
}

var bookmarkExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Writes bookmarks as a JSON array to FILE or standard output",
	Args:  cobra.MaximumNArgs(1),
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, store *bookmark.Store) error {
		data := store.Export()
		if len(args) == 0 || args[0] == "-" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), data)
			return err
		}
		if err := os.WriteFile(args[0], []byte(data+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[0], err)
		}
		return nil
	}),
}

var errInvalidImport = errors.New("bookmark data must be a JSON array of repositories")

var bookmarkImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replaces bookmarks with the JSON array in FILE (- for standard input)",
	Args:  cobra.ExactArgs(1),
	RunE: withBookmarks(func(cmd *cobra.Command, args []string, store *bookmark.Store) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read bookmarks: %w", err)
		}
		if !store.Import(string(data)) {
			return errInvalidImport
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks\n", store.Count())
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(bookmarkCmd)
	bookmarkCmd.AddCommand(
		bookmarkAddCmd,
		bookmarkRemoveCmd,
		bookmarkListCmd,
		bookmarkCountCmd,
		bookmarkClearCmd,
		bookmarkExportCmd,
		bookmarkImportCmd,
	)
	bookmarkListCmd.Flags().Bool("json", false, "Print bookmarks as JSON")
}
