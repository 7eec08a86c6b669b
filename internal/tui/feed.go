package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naka-gawa/repo-catalog/internal/usecase"
)

type (
	// snapshotMsg carries a controller state change into the program.
	snapshotMsg usecase.Snapshot

	// bookmarksChangedMsg reports that the bookmark slot was rewritten,
	// possibly by another process.
	bookmarksChangedMsg struct{}
)

// Feed bridges controller notifications, which arrive on arbitrary
// goroutines, into Bubble Tea messages. It holds at most one pending
// snapshot and only ever the newest one.
type Feed struct {
	mu        sync.Mutex
	last      uint64
	snapshots chan usecase.Snapshot
	bookmarks chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{
		snapshots: make(chan usecase.Snapshot, 1),
		bookmarks: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Push offers a snapshot. Snapshots older than the last pushed one are
// dropped and an unread pending snapshot is replaced. Suitable as the
// controller's OnChange callback.
func (f *Feed) Push(snap usecase.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if snap.Version <= f.last {
		return
	}
	f.last = snap.Version
	select {
	case <-f.snapshots:
	default:
	}
	f.snapshots <- snap
}

// BookmarksChanged records that the bookmark store changed. Repeated calls
// before the program reads the event collapse into one.
func (f *Feed) BookmarksChanged() {
	select {
	case f.bookmarks <- struct{}{}:
	default:
	}
}

// Close releases any command blocked on the feed.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

// nextSnapshot waits for the next snapshot. It yields nil once the feed is closed.
func (f *Feed) nextSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-f.snapshots:
			return snapshotMsg(snap)
		case <-f.done:
			return nil
		}
	}
}

func (f *Feed) nextBookmarkChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.bookmarks:
			return bookmarksChangedMsg{}
		case <-f.done:
			return nil
		}
	}
}
