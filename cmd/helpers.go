package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/bookmark"
	"github.com/naka-gawa/repo-catalog/internal/gateway"
	"github.com/naka-gawa/repo-catalog/internal/storage"
	"github.com/naka-gawa/repo-catalog/internal/usecase"
)

func newFetcher() (gateway.Fetcher, error) {
	f, err := gateway.New(gateway.Options{
		Org:      cfg.Org,
		API:      cfg.API,
		BaseURL:  cfg.APIURL,
		Token:    cfg.Token,
		PerPage:  cfg.PerPage,
		MaxPages: cfg.MaxPages,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return f, nil
}

// openBookmarks opens the configured storage backend. The caller closes the KV.
func openBookmarks() (*bookmark.Store, storage.KV, error) {
	kv, err := storage.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open bookmark storage: %w", err)
	}
	return bookmark.NewStore(kv, logger), kv, nil
}

// loadCatalog mounts a controller without pacing, waits for the fetch and
// applies search. The caller must Unmount the returned controller.
func loadCatalog(ctx context.Context, search string) (*usecase.Controller, error) {
	fetcher, err := newFetcher()
	if err != nil {
		return nil, err
	}
	ctrl := usecase.NewController(fetcher, logger, usecase.ControllerOptions{PageSize: cfg.PageSize})
	if err := ctrl.Mount(ctx); err != nil {
		return nil, err
	}

	snap, err := ctrl.Wait(ctx, usecase.Snapshot.Settled)
	if err != nil {
		ctrl.Unmount()
		return nil, err
	}
	if snap.Status == usecase.StatusError {
		ctrl.Unmount()
		logger.Error("repository fetch failed", zap.Error(snap.Err))
		return nil, fmt.Errorf("%s: %w", snap.Message, snap.Err)
	}
	if search != "" {
		ctrl.SetSearchTerm(search)
	}
	return ctrl, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
