// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/repo-catalog/internal/domain"
)

// inspectConcurrency bounds the number of detail requests in flight.
const inspectConcurrency = 4

// RepositoryGetter is the detail-path part of the data source.
type RepositoryGetter interface {
	GetOne(ctx context.Context, name string) (domain.Repository, error)
}

// BookmarkChecker reports whether a repository id is bookmarked.
type BookmarkChecker interface {
	IsBookmarked(id int64) bool
}

// Inspector is the use case behind the detail view.
// It fetches repositories by name and joins their bookmark state.
type Inspector struct {
	getter    RepositoryGetter
	bookmarks BookmarkChecker
	logger    *zap.Logger
}

// NewInspector creates a new Inspector instance.
func NewInspector(getter RepositoryGetter, bookmarks BookmarkChecker, logger *zap.Logger) *Inspector {
	return &Inspector{
		getter:    getter,
		bookmarks: bookmarks,
		logger:    logger,
	}
}

// Inspect fetches every named repository concurrently. Results keep the order
// of names; the first failure cancels the remaining requests.
func (i *Inspector) Inspect(ctx context.Context, names []string) ([]*domain.RepositoryView, error) {
	i.logger.Debug("inspecting repositories", zap.Strings("names", names))

	views := make([]*domain.RepositoryView, len(names))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(inspectConcurrency)

	for idx, name := range names {
		eg.Go(func() error {
			repo, err := i.getter.GetOne(egCtx, name)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", name, err)
			}
			views[idx] = &domain.RepositoryView{
				Repository: repo,
				Bookmarked: i.bookmarks.IsBookmarked(repo.ID),
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	i.logger.Debug("inspection complete", zap.Int("count", len(views)))
	return views, nil
}
