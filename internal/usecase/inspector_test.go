package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/domain"
)

// mockGetter is a mock implementation of RepositoryGetter.
type mockGetter struct {
	mock.Mock
}

func (m *mockGetter) GetOne(ctx context.Context, name string) (domain.Repository, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Repository), args.Error(1)
}

// bookmarkSet is a BookmarkChecker backed by a fixed set of ids.
type bookmarkSet map[int64]bool

func (b bookmarkSet) IsBookmarked(id int64) bool { return b[id] }

// TestInspector_Inspect uses a table-driven approach to test the inspector.
func TestInspector_Inspect(t *testing.T) {
	repoA := domain.Repository{ID: 1, Name: "repo-a"}
	repoB := domain.Repository{ID: 2, Name: "repo-b"}
	repoC := domain.Repository{ID: 3, Name: "repo-c"}

	testCases := []struct {
		name           string
		names          []string
		setup          func(g *mockGetter)
		bookmarks      bookmarkSet
		expectedResult []*domain.RepositoryView
		expectError    bool
	}{
		{
			name:  "happy path - keeps argument order and joins bookmarks",
			names: []string{"repo-c", "repo-a", "repo-b"},
			setup: func(g *mockGetter) {
				g.On("GetOne", mock.Anything, "repo-a").Return(repoA, nil)
				g.On("GetOne", mock.Anything, "repo-b").Return(repoB, nil)
				g.On("GetOne", mock.Anything, "repo-c").Return(repoC, nil)
			},
			bookmarks: bookmarkSet{2: true},
			expectedResult: []*domain.RepositoryView{
				{Repository: repoC},
				{Repository: repoA},
				{Repository: repoB, Bookmarked: true},
			},
		},
		{
			name:  "error case - one fetch fails",
			names: []string{"repo-a", "missing"},
			setup: func(g *mockGetter) {
				g.On("GetOne", mock.Anything, "repo-a").Return(repoA, nil).Maybe()
				g.On("GetOne", mock.Anything, "missing").Return(domain.Repository{}, errors.New("GitHub API error: 404 Not Found"))
			},
			expectError: true,
		},
		{
			name:           "empty case - no names",
			names:          []string{},
			setup:          func(g *mockGetter) {},
			expectedResult: []*domain.RepositoryView{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			getter := new(mockGetter)
			tc.setup(getter)
			inspector := NewInspector(getter, tc.bookmarks, zap.NewNop())

			results, err := inspector.Inspect(context.Background(), tc.names)

			if tc.expectError {
				assert.ErrorContains(t, err, "fetching missing")
				assert.Nil(t, results)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedResult, results)
			}
			getter.AssertExpectations(t)
		})
	}
}
