// Package tui is the interactive terminal shell: a searchable, infinitely
// scrolling repository list with a detail view, bookmarks and exports.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/bookmark"
	"github.com/naka-gawa/repo-catalog/internal/domain"
	"github.com/naka-gawa/repo-catalog/internal/format"
	"github.com/naka-gawa/repo-catalog/internal/usecase"
)

// proximityRows is how close to the last visible card the cursor must be
// for the load-more sentinel to count as in view.
const proximityRows = 3

const (
	cardHeight    = 4
	chromeHeight  = 9
	defaultCards  = 5
	sentinelDelay = 200 * time.Millisecond
)

// State is the active screen.
type State int

const (
	StateList State = iota
	StateDetail
)

// Options wires the shell to its collaborators.
type Options struct {
	Controller *usecase.Controller
	Feed       *Feed
	// Signal is fired when the cursor nears the end of the visible page.
	Signal    *usecase.Sentinel
	Bookmarks *bookmark.Store
	Org       string
	ExportDir string
	Logger    *zap.Logger
	Now       func() time.Time
}

// Model is the Bubble Tea model of the catalog browser.
type Model struct {
	ctrl      *usecase.Controller
	feed      *Feed
	bookmarks *bookmark.Store
	logger    *zap.Logger
	now       func() time.Time
	org       string
	exportDir string

	// fireSentinel is the throttled proximity trigger.
	fireSentinel func()

	state      State
	snap       usecase.Snapshot
	search     textinput.Model
	searching  bool
	spinner    spinner.Model
	cursor     int
	offset     int
	detail     *domain.Repository
	bookmarked map[int64]bool
	status     string
	statusErr  bool
	width      int
	height     int
}

// New creates the model. The controller should already be mounted.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	ti := textinput.New()
	ti.Placeholder = "Search repositories by name, description, or language..."
	ti.Prompt = "/ "
	ti.CharLimit = 100

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = subtleStyle

	fire := func() {}
	if opts.Signal != nil {
		fire = format.Throttle(opts.Signal.Fire, sentinelDelay, true, true)
	}

	m := Model{
		ctrl:         opts.Controller,
		feed:         opts.Feed,
		bookmarks:    opts.Bookmarks,
		logger:       opts.Logger,
		now:          opts.Now,
		org:          opts.Org,
		exportDir:    opts.ExportDir,
		fireSentinel: fire,
		search:       ti,
		spinner:      sp,
		snap:         opts.Controller.Snapshot(),
	}
	m.refreshBookmarks()
	return m
}

// Init starts listening for controller and bookmark changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.feed.nextSnapshot(),
		m.feed.nextBookmarkChange(),
	)
}

func (m *Model) refreshBookmarks() {
	if m.bookmarks == nil {
		m.bookmarked = map[int64]bool{}
		return
	}
	set := make(map[int64]bool)
	for _, b := range m.bookmarks.List() {
		set[b.ID] = true
	}
	m.bookmarked = set
}

// selected returns the repository under the cursor.
func (m Model) selected() (domain.Repository, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Visible) {
		return domain.Repository{}, false
	}
	return m.snap.Visible[m.cursor], true
}

// cardsPerScreen is how many cards fit between the header and footer.
func (m Model) cardsPerScreen() int {
	if m.height == 0 {
		return defaultCards
	}
	return max(1, (m.height-chromeHeight)/cardHeight)
}

// clampCursor keeps the cursor on a visible card and the card on screen.
func (m *Model) clampCursor() {
	n := len(m.snap.Visible)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	per := m.cardsPerScreen()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+per {
		m.offset = m.cursor - per + 1
	}
	if m.offset > max(0, n-per) {
		m.offset = max(0, n-per)
	}
}

// sentinelInView reports whether the load-more row counts as visible.
func (m Model) sentinelInView() bool {
	return m.snap.HasMore && m.cursor >= len(m.snap.Visible)-proximityRows
}
