package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/bookmark"
	"github.com/naka-gawa/repo-catalog/internal/format"
	"github.com/naka-gawa/repo-catalog/internal/storage"
	"github.com/naka-gawa/repo-catalog/internal/tui"
	"github.com/naka-gawa/repo-catalog/internal/usecase"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Opens the interactive repository browser",
	Long: `Opens a terminal browser over the organization's repositories. Press / to
search, move to the end of the list to load more, enter for details, b to
bookmark, c or J to export the current results, r to retry after an error.
Logs go to --log-file only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.With(zap.String("session", format.NewID("browse", 8)))

		fetcher, err := newFetcher()
		if err != nil {
			return err
		}
		store, kv, err := openBookmarks()
		if err != nil {
			return err
		}
		defer kv.Close()

		feed := tui.NewFeed()
		defer feed.Close()
		sentinel := usecase.NewSentinel()
		ctrl := usecase.NewController(fetcher, log, usecase.ControllerOptions{
			PageSize:    cfg.PageSize,
			PacingDelay: cfg.Pacing(),
			Signal:      sentinel,
			OnChange:    feed.Push,
		})
		if err := ctrl.Mount(ctx); err != nil {
			return err
		}
		defer ctrl.Unmount()

		// Other sessions may edit the same bookmark file.
		if fkv, ok := kv.(*storage.FileKV); ok {
			stop, err := fkv.Watch(bookmark.StorageKey, 100*time.Millisecond, feed.BookmarksChanged, log)
			if err != nil {
				log.Warn("bookmark changes from other sessions will not be shown", zap.Error(err))
			} else {
				defer stop()
			}
		}

		model := tui.New(tui.Options{
			Controller: ctrl,
			Feed:       feed,
			Signal:     sentinel,
			Bookmarks:  store,
			Org:        cfg.Org,
			ExportDir:  cfg.ExportDir,
			Logger:     log,
		})
		log.Info("browser started", zap.String("org", cfg.Org))
		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
