package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/domain"
)

// mockLister is a mock implementation of RepositoryLister.
type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListAll(ctx context.Context) ([]domain.Repository, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Repository), args.Error(1)
}

// gatedLister blocks every ListAll until release is closed or ctx ends.
type gatedLister struct {
	release chan struct{}
	repos   []domain.Repository
}

func (g *gatedLister) ListAll(ctx context.Context) ([]domain.Repository, error) {
	select {
	case <-g.release:
		return g.repos, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func makeRepos(n int) []domain.Repository {
	repos := make([]domain.Repository, n)
	for i := range repos {
		repos[i] = domain.Repository{
			ID:          int64(i + 1),
			Name:        fmt.Sprintf("repo-%02d", i+1),
			Description: domain.NoDescription,
			Language:    "Go",
		}
	}
	return repos
}

func ids(repos []domain.Repository) []int64 {
	out := make([]int64, len(repos))
	for i, r := range repos {
		out[i] = r.ID
	}
	return out
}

func settled(s Snapshot) bool { return s.Settled() }

// mountReady mounts a controller over repos and waits for the first fetch to land.
func mountReady(t *testing.T, repos []domain.Repository, opts ControllerOptions) (*Controller, *mockLister) {
	t.Helper()
	lister := new(mockLister)
	lister.On("ListAll", mock.Anything).Return(repos, nil).Once()
	c := NewController(lister, zap.NewNop(), opts)
	require.NoError(t, c.Mount(context.Background()))
	t.Cleanup(c.Unmount)

	snap, err := c.Wait(waitCtx(t), settled)
	require.NoError(t, err)
	require.Equal(t, StatusReady, snap.Status)
	return c, lister
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestController_MountRevealsFirstPage(t *testing.T) {
	testCases := []struct {
		name         string
		total        int
		expectedSize int
		expectedMore bool
	}{
		{name: "more than a page", total: 30, expectedSize: 12, expectedMore: true},
		{name: "exactly a page", total: 12, expectedSize: 12, expectedMore: false},
		{name: "less than a page", total: 5, expectedSize: 5, expectedMore: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repos := makeRepos(tc.total)
			c, lister := mountReady(t, repos, ControllerOptions{})

			snap := c.Snapshot()
			assert.Equal(t, tc.expectedSize, snap.VisibleCount)
			assert.Equal(t, ids(repos[:tc.expectedSize]), ids(snap.Visible))
			assert.Equal(t, tc.expectedMore, snap.HasMore)
			assert.Equal(t, tc.total, snap.Total)
			assert.False(t, snap.NoResults())
			lister.AssertNumberOfCalls(t, "ListAll", 1)
		})
	}
}

func TestController_EmptyResultIsNotAnError(t *testing.T) {
	c, _ := mountReady(t, []domain.Repository{}, ControllerOptions{})

	snap := c.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.Empty(t, snap.Visible)
	assert.True(t, snap.NoResults())
	assert.False(t, snap.HasMore)
	assert.NoError(t, snap.Err)
	assert.False(t, c.LoadMore())
}

func TestController_FetchFailureThenRetry(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListAll", mock.Anything).Return(nil, errors.New("Network error")).Once()
	lister.On("ListAll", mock.Anything).Return(makeRepos(1), nil).Once()

	var mu sync.Mutex
	var statuses []Status
	var latest Snapshot
	c := NewController(lister, zap.NewNop(), ControllerOptions{
		OnChange: func(s Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			statuses = append(statuses, s.Status)
			if s.Version > latest.Version {
				latest = s
			}
		},
	})
	assert.ErrorIs(t, c.Retry(), ErrNotMounted)
	require.NoError(t, c.Mount(context.Background()))
	defer c.Unmount()

	snap, err := c.Wait(waitCtx(t), settled)
	require.NoError(t, err)
	require.Equal(t, StatusError, snap.Status)
	assert.Equal(t, FetchFailedMessage, snap.Message)
	assert.EqualError(t, snap.Err, "Network error")
	assert.Empty(t, c.All())
	assert.False(t, c.LoadMore())

	require.NoError(t, c.Retry())
	snap, err = c.Wait(waitCtx(t), settled)
	require.NoError(t, err)
	require.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, []int64{1}, ids(snap.Visible))
	assert.Empty(t, snap.Message)
	assert.NoError(t, snap.Err)

	assert.ErrorIs(t, c.Retry(), ErrNotRetryable)
	lister.AssertNumberOfCalls(t, "ListAll", 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, statuses, StatusLoading)
	assert.Contains(t, statuses, StatusError)
	assert.Equal(t, StatusReady, latest.Status)
}

func TestController_MountTwice(t *testing.T) {
	c, _ := mountReady(t, makeRepos(3), ControllerOptions{})
	assert.ErrorIs(t, c.Mount(context.Background()), ErrAlreadyMounted)
}

func TestController_SearchFiltersAcrossFields(t *testing.T) {
	repos := []domain.Repository{
		{ID: 1, Name: "Hosting-API", Description: "control plane", Language: "Go"},
		{ID: 2, Name: "web-ui", Description: "Dashboard for HOSTING", Language: "TypeScript"},
		{ID: 3, Name: "tools", Description: domain.NoDescription, Language: "Python"},
		{ID: 4, Name: "docs", Description: "site", Language: domain.NoLanguage},
	}
	testCases := []struct {
		term     string
		expected []int64
	}{
		{term: "hosting", expected: []int64{1, 2}},
		{term: "PYTHON", expected: []int64{3}},
		{term: "script", expected: []int64{2, 3}},
		{term: "specified", expected: []int64{4}},
		{term: "nothing-matches", expected: []int64{}},
		{term: "", expected: []int64{1, 2, 3, 4}},
		{term: "   ", expected: []int64{1, 2, 3, 4}},
	}
	c, lister := mountReady(t, repos, ControllerOptions{})
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("term %q", tc.term), func(t *testing.T) {
			c.SetSearchTerm(tc.term)
			snap := c.Snapshot()
			assert.Equal(t, tc.expected, ids(snap.Visible))
			assert.Equal(t, tc.term, snap.SearchTerm)
			assert.Equal(t, len(tc.expected), snap.Matched)
		})
	}
	lister.AssertNumberOfCalls(t, "ListAll", 1)
}

func TestController_SearchIsIdempotent(t *testing.T) {
	repos := makeRepos(30)
	repos[4].Description = "special"
	repos[17].Description = "Special too"
	c, _ := mountReady(t, repos, ControllerOptions{})

	c.SetSearchTerm("special")
	first := c.Snapshot()
	c.SetSearchTerm("special")
	second := c.Snapshot()

	assert.Equal(t, []int64{5, 18}, ids(first.Visible))
	assert.Equal(t, ids(first.Visible), ids(second.Visible))
	assert.Equal(t, first.VisibleCount, second.VisibleCount)
	assert.Equal(t, first.HasMore, second.HasMore)
}

func TestController_SearchResetRestoresFirstPage(t *testing.T) {
	repos := makeRepos(30)
	c, _ := mountReady(t, repos, ControllerOptions{})
	require.True(t, c.LoadMore())
	require.Equal(t, 24, c.Snapshot().VisibleCount)

	c.SetSearchTerm("zzz-no-match")
	snap := c.Snapshot()
	assert.True(t, snap.NoResults())
	assert.False(t, snap.HasMore)

	c.SetSearchTerm("")
	snap = c.Snapshot()
	assert.Equal(t, ids(repos[:12]), ids(snap.Visible))
	assert.True(t, snap.HasMore)
}

func TestController_HasMoreTracksFilteredLength(t *testing.T) {
	repos := makeRepos(40)
	for i := range repos {
		if i%2 == 0 {
			repos[i].Language = "Rust"
		}
	}
	c, _ := mountReady(t, repos, ControllerOptions{})

	c.SetSearchTerm("rust")
	snap := c.Snapshot()
	assert.Equal(t, 20, snap.Matched)
	assert.Equal(t, 12, snap.VisibleCount)
	assert.True(t, snap.HasMore)

	require.True(t, c.LoadMore())
	snap = c.Snapshot()
	assert.Equal(t, 20, snap.VisibleCount)
	assert.False(t, snap.HasMore)
	assert.False(t, c.LoadMore())
}

func TestController_RapidLoadMoreExtendsOnce(t *testing.T) {
	c, lister := mountReady(t, makeRepos(24), ControllerOptions{PacingDelay: 50 * time.Millisecond})

	assert.True(t, c.LoadMore())
	assert.False(t, c.LoadMore())
	assert.True(t, c.Snapshot().LoadingMore)

	snap, err := c.Wait(waitCtx(t), settled)
	require.NoError(t, err)
	assert.Equal(t, 24, snap.VisibleCount)
	assert.False(t, snap.HasMore)
	assert.False(t, snap.LoadingMore)
	assert.False(t, c.LoadMore())
	lister.AssertNumberOfCalls(t, "ListAll", 1)
}

func TestController_ConcurrentTriggersExtendOnce(t *testing.T) {
	c, _ := mountReady(t, makeRepos(24), ControllerOptions{PacingDelay: 20 * time.Millisecond})

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.LoadMore() {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	snap, err := c.Wait(waitCtx(t), settled)
	require.NoError(t, err)
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 24, snap.VisibleCount)
}

func TestController_PageMonotonicity(t *testing.T) {
	c, _ := mountReady(t, makeRepos(40), ControllerOptions{})

	previous := c.Snapshot().VisibleCount
	for range 10 {
		c.LoadMore()
		snap := c.Snapshot()
		assert.GreaterOrEqual(t, snap.VisibleCount, previous)
		assert.LessOrEqual(t, snap.VisibleCount, snap.Matched)
		previous = snap.VisibleCount
	}
	assert.Equal(t, 40, previous)
	assert.Equal(t, ids(makeRepos(40)), ids(c.Snapshot().Visible))
}

func TestController_SearchDuringPacingDiscardsExtension(t *testing.T) {
	c, _ := mountReady(t, makeRepos(30), ControllerOptions{PacingDelay: 30 * time.Millisecond})

	require.True(t, c.LoadMore())
	c.SetSearchTerm("repo-0")
	snap := c.Snapshot()
	assert.False(t, snap.LoadingMore)
	assert.Equal(t, 9, snap.Matched)

	time.Sleep(80 * time.Millisecond)
	snap = c.Snapshot()
	assert.Equal(t, 9, snap.VisibleCount)
	assert.Equal(t, "repo-0", snap.SearchTerm)
}

func TestController_ProximitySignalDrivesLoadMore(t *testing.T) {
	defer goleak.VerifyNone(t)

	sentinel := NewSentinel()
	lister := new(mockLister)
	lister.On("ListAll", mock.Anything).Return(makeRepos(30), nil).Once()
	c := NewController(lister, zap.NewNop(), ControllerOptions{Signal: sentinel, PacingDelay: 10 * time.Millisecond})

	require.NoError(t, c.Mount(context.Background()))
	assert.Equal(t, 1, sentinel.Subscribers())
	_, err := c.Wait(waitCtx(t), settled)
	require.NoError(t, err)

	sentinel.Fire()
	sentinel.Fire()
	snap, err := c.Wait(waitCtx(t), settled)
	require.NoError(t, err)
	assert.Equal(t, 24, snap.VisibleCount)

	sentinel.Fire()
	snap, err = c.Wait(waitCtx(t), func(s Snapshot) bool { return s.Settled() && s.VisibleCount == 30 })
	require.NoError(t, err)
	assert.False(t, snap.HasMore)

	c.Unmount()
	assert.Equal(t, 0, sentinel.Subscribers())
	sentinel.Fire()
	assert.Equal(t, StatusIdle, c.Snapshot().Status)
}

func TestController_UnmountDiscardsInFlightFetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	lister := &gatedLister{release: make(chan struct{}), repos: makeRepos(3)}
	var mu sync.Mutex
	var seen []Snapshot
	c := NewController(lister, zap.NewNop(), ControllerOptions{
		OnChange: func(s Snapshot) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		},
	})
	require.NoError(t, c.Mount(context.Background()))
	assert.Equal(t, StatusLoading, c.Snapshot().Status)

	c.Unmount()
	close(lister.release)

	snap := c.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.Visible)

	mu.Lock()
	defer mu.Unlock()
	for _, s := range seen {
		assert.NotEqual(t, StatusReady, s.Status)
		assert.NotEqual(t, StatusError, s.Status)
	}

	_, err := c.Wait(context.Background(), func(s Snapshot) bool { return s.Status == StatusReady })
	assert.ErrorIs(t, err, ErrNotMounted)
}

func TestController_UnmountCancelsPacing(t *testing.T) {
	defer goleak.VerifyNone(t)

	lister := new(mockLister)
	lister.On("ListAll", mock.Anything).Return(makeRepos(30), nil).Once()
	c := NewController(lister, zap.NewNop(), ControllerOptions{PacingDelay: time.Hour})
	require.NoError(t, c.Mount(context.Background()))
	_, err := c.Wait(waitCtx(t), settled)
	require.NoError(t, err)

	require.True(t, c.LoadMore())
	done := make(chan struct{})
	go func() {
		c.Unmount()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Unmount did not cancel the pacing delay")
	}
}

func TestController_FilteredReturnsWholeCollection(t *testing.T) {
	c, _ := mountReady(t, makeRepos(30), ControllerOptions{})

	assert.Len(t, c.Filtered(), 30)
	assert.Len(t, c.Snapshot().Visible, 12)

	c.SetSearchTerm("repo-2")
	assert.Equal(t, []int64{20, 21, 22, 23, 24, 25, 26, 27, 28, 29}, ids(c.Filtered()))

	c.SetSearchTerm("repo-0")
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}, ids(c.Filtered()))
	assert.Len(t, c.All(), 30)
}

func TestFilter_BlankTermReturnsInput(t *testing.T) {
	repos := makeRepos(3)
	assert.Equal(t, repos, Filter(repos, ""))
	assert.Equal(t, repos, Filter(repos, " \t"))
	assert.Empty(t, Filter(nil, "x"))
}
