package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/domain"
)

const (
	// DefaultPageSize is the number of repositories revealed per page.
	DefaultPageSize = 12
	// DefaultPacingDelay is the pause before a load-more extension lands.
	DefaultPacingDelay = 500 * time.Millisecond
	// FetchFailedMessage is shown to the user when the initial fetch or a retry fails.
	FetchFailedMessage = "Failed to fetch repositories. Please try again later."
)

var (
	// ErrAlreadyMounted is returned by Mount on a controller that is mounted.
	ErrAlreadyMounted = errors.New("controller is already mounted")
	// ErrNotMounted is returned by operations that need a mounted controller.
	ErrNotMounted = errors.New("controller is not mounted")
	// ErrNotRetryable is returned by Retry outside the error state.
	ErrNotRetryable = errors.New("retry is only available after a failed fetch")
)

// Status is the top-level state of a Controller.
type Status int

const (
	// StatusIdle is the state before Mount and after Unmount.
	StatusIdle Status = iota
	// StatusLoading covers the initial fetch and a retry.
	StatusLoading
	// StatusError means the last fetch failed; Retry is allowed.
	StatusError
	// StatusReady means the collection is loaded, possibly empty.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// RepositoryLister is the part of the data source the Controller depends on.
type RepositoryLister interface {
	ListAll(ctx context.Context) ([]domain.Repository, error)
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	// PageSize defaults to DefaultPageSize when not positive.
	PageSize int
	// PacingDelay is applied before each load-more extension. Zero extends immediately.
	PacingDelay time.Duration
	// Signal, when set, triggers LoadMore for as long as the controller is mounted.
	Signal ProximitySignal
	// OnChange receives a snapshot after every state transition. It may be
	// called from several goroutines; Snapshot.Version orders the calls.
	OnChange func(Snapshot)
}

// Snapshot is an immutable view of the controller state handed to the presentation layer.
type Snapshot struct {
	Version      uint64
	Status       Status
	LoadingMore  bool
	Message      string
	Err          error
	SearchTerm   string
	Visible      []domain.Repository
	VisibleCount int
	Matched      int
	Total        int
	HasMore      bool
}

// NoResults reports the "no repositories found" condition: a successful
// fetch with nothing to show. It is not an error.
func (s Snapshot) NoResults() bool {
	return s.Status == StatusReady && len(s.Visible) == 0
}

// Settled reports whether no fetch or page extension is in flight.
func (s Snapshot) Settled() bool {
	return (s.Status == StatusReady || s.Status == StatusError) && !s.LoadingMore
}

// Controller owns the fetch, filter and incremental pagination state of the
// repository list. The full collection is fetched once per mount or retry;
// searching and paging operate on it in memory.
type Controller struct {
	lister   RepositoryLister
	logger   *zap.Logger
	pageSize int
	pacing   time.Duration
	signal   ProximitySignal
	onChange func(Snapshot)

	mu           sync.Mutex
	mounted      bool
	ctx          context.Context
	cancel       context.CancelFunc
	unsubscribe  func()
	status       Status
	err          error
	all          []domain.Repository
	filtered     []domain.Repository
	searchTerm   string
	visibleCount int
	loadingMore  bool
	fetchSeq     uint64
	session      uint64
	version      uint64
	changed      chan struct{}
	wg           sync.WaitGroup
}

// NewController creates an unmounted Controller.
func NewController(lister RepositoryLister, logger *zap.Logger, opts ControllerOptions) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PacingDelay < 0 {
		opts.PacingDelay = 0
	}
	return &Controller{
		lister:   lister,
		logger:   logger,
		pageSize: opts.PageSize,
		pacing:   opts.PacingDelay,
		signal:   opts.Signal,
		onChange: opts.OnChange,
		changed:  make(chan struct{}),
	}
}

// Mount subscribes to the proximity signal and starts the initial fetch.
// Cancelling ctx has the same effect on in-flight work as Unmount.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return ErrAlreadyMounted
	}
	c.mounted = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	if c.signal != nil {
		c.unsubscribe = c.signal.Subscribe(func() { c.LoadMore() })
	}
	c.logger.Debug("repository list mounted", zap.Int("page_size", c.pageSize))
	snap := c.startFetchLocked()
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

// Retry re-runs the fetch after a failure.
func (c *Controller) Retry() error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	if c.status != StatusError {
		c.mu.Unlock()
		return ErrNotRetryable
	}
	c.logger.Info("retrying repository fetch")
	snap := c.startFetchLocked()
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

// startFetchLocked enters Loading and issues the fetch. Only a result whose
// sequence number is still current is applied.
func (c *Controller) startFetchLocked() Snapshot {
	c.fetchSeq++
	seq := c.fetchSeq
	ctx := c.ctx
	c.status = StatusLoading
	c.err = nil
	c.loadingMore = false

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		repos, err := c.lister.ListAll(ctx)
		c.finishFetch(seq, repos, err)
	}()
	return c.changedLocked()
}

func (c *Controller) finishFetch(seq uint64, repos []domain.Repository, err error) {
	c.mu.Lock()
	if !c.mounted || seq != c.fetchSeq {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded fetch result", zap.Uint64("seq", seq))
		return
	}
	if err != nil {
		c.logger.Warn("failed to fetch repositories", zap.Error(err))
		c.status = StatusError
		c.err = err
		c.all = nil
		c.filtered = nil
		c.visibleCount = 0
		c.session++
	} else {
		c.logger.Info("fetched repositories", zap.Int("count", len(repos)))
		c.status = StatusReady
		c.all = repos
		c.resetPageLocked()
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
}

// SetSearchTerm re-filters the fetched collection and returns to the first page.
// It never fetches.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.searchTerm = term
	c.resetPageLocked()
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
}

// resetPageLocked starts a new filter session. A page extension still
// pacing for the previous session is discarded when it lands.
func (c *Controller) resetPageLocked() {
	c.session++
	c.filtered = Filter(c.all, c.searchTerm)
	c.visibleCount = min(c.pageSize, len(c.filtered))
	c.loadingMore = false
}

// LoadMore extends the visible page by one page size. It is a no-op, and
// returns false, unless the list is ready, has more rows to reveal and no
// extension is already in flight. Excess calls are dropped, not queued.
func (c *Controller) LoadMore() bool {
	c.mu.Lock()
	if !c.mounted || c.status != StatusReady || c.loadingMore || !c.hasMoreLocked() {
		c.mu.Unlock()
		return false
	}
	session := c.session

	if c.pacing <= 0 {
		c.extendLocked()
		snap := c.changedLocked()
		c.mu.Unlock()
		c.publish(snap)
		return true
	}

	c.loadingMore = true
	ctx := c.ctx
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		timer := time.NewTimer(c.pacing)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		c.finishLoadMore(session)
	}()
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
	return true
}

func (c *Controller) finishLoadMore(session uint64) {
	c.mu.Lock()
	if !c.mounted || session != c.session {
		c.mu.Unlock()
		return
	}
	c.extendLocked()
	c.loadingMore = false
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Controller) extendLocked() {
	c.visibleCount = min(c.visibleCount+c.pageSize, len(c.filtered))
	c.logger.Debug("extended visible page", zap.Int("visible", c.visibleCount), zap.Int("matched", len(c.filtered)))
}

func (c *Controller) hasMoreLocked() bool {
	return c.visibleCount < len(c.filtered)
}

// Unmount cancels in-flight work, releases the proximity signal and drops all
// state. It blocks until background goroutines have returned.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = false
	c.cancel()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.status = StatusIdle
	c.err = nil
	c.all = nil
	c.filtered = nil
	c.searchTerm = ""
	c.visibleCount = 0
	c.loadingMore = false
	c.session++
	c.changedLocked()
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.wg.Wait()
	c.logger.Debug("repository list unmounted")
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Filtered returns the full filtered collection, not just the visible page.
func (c *Controller) Filtered() []domain.Repository {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.filtered)
}

// All returns the collection from the last successful fetch.
func (c *Controller) All() []domain.Repository {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.all)
}

// Wait blocks until cond holds for the current state, ctx is done or the
// controller is unmounted.
func (c *Controller) Wait(ctx context.Context, cond func(Snapshot) bool) (Snapshot, error) {
	for {
		c.mu.Lock()
		snap := c.snapshotLocked()
		mounted := c.mounted
		changed := c.changed
		c.mu.Unlock()

		if cond(snap) {
			return snap, nil
		}
		if !mounted {
			return snap, ErrNotMounted
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-changed:
		}
	}
}

// changedLocked records a transition: it bumps the version and wakes waiters.
func (c *Controller) changedLocked() Snapshot {
	c.version++
	close(c.changed)
	c.changed = make(chan struct{})
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:      c.version,
		Status:       c.status,
		LoadingMore:  c.loadingMore,
		Err:          c.err,
		SearchTerm:   c.searchTerm,
		Visible:      slices.Clip(c.filtered[:c.visibleCount]),
		VisibleCount: c.visibleCount,
		Matched:      len(c.filtered),
		Total:        len(c.all),
		HasMore:      c.hasMoreLocked(),
	}
	if c.status == StatusError {
		snap.Message = FetchFailedMessage
	}
	return snap
}

func (c *Controller) publish(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
