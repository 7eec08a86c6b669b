// Package bookmark keeps the user's saved repositories in a single persistent slot.
package bookmark

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/repo-catalog/internal/domain"
	"github.com/naka-gawa/repo-catalog/internal/storage"
)

// StorageKey is the slot holding the JSON array of bookmarks.
const StorageKey = "repo_catalog_bookmarks"

// Store is a CRUD layer over the bookmark slot. Reads never fail: missing or
// unreadable data is treated as an empty list. Write failures are logged and
// otherwise ignored.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *zap.Logger
	now    func() time.Time
}

// NewStore creates a Store backed by kv.
func NewStore(kv storage.KV, logger *zap.Logger) *Store {
	return &Store{kv: kv, logger: logger, now: time.Now}
}

func (s *Store) load() []domain.Bookmark {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		s.logger.Warn("failed to read bookmarks", zap.Error(err))
		return []domain.Bookmark{}
	}
	if !ok || raw == "" {
		return []domain.Bookmark{}
	}
	var bookmarks []domain.Bookmark
	if err := json.Unmarshal([]byte(raw), &bookmarks); err != nil {
		s.logger.Warn("bookmark data is corrupt, treating as empty", zap.Error(err))
		return []domain.Bookmark{}
	}
	if bookmarks == nil {
		return []domain.Bookmark{}
	}
	return bookmarks
}

func (s *Store) save(bookmarks []domain.Bookmark) {
	data, err := json.Marshal(bookmarks)
	if err != nil {
		s.logger.Warn("failed to encode bookmarks", zap.Error(err))
		return
	}
	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		s.logger.Warn("failed to save bookmarks", zap.Error(err))
	}
}

// Add saves repo with the current time. It returns false if a bookmark with
// the same id already exists.
func (s *Store) Add(repo domain.Repository) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks := s.load()
	for _, b := range bookmarks {
		if b.ID == repo.ID {
			return false
		}
	}
	bookmarks = append(bookmarks, domain.Bookmark{
		Repository:   repo,
		BookmarkedAt: s.now().UTC().Format(time.RFC3339Nano),
	})
	s.save(bookmarks)
	s.logger.Debug("bookmark added", zap.Int64("id", repo.ID), zap.String("name", repo.Name))
	return true
}

// Remove deletes the bookmark with the given id, reporting whether one existed.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarks := s.load()
	kept := bookmarks[:0]
	for _, b := range bookmarks {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(bookmarks) {
		return false
	}
	s.save(kept)
	s.logger.Debug("bookmark removed", zap.Int64("id", id))
	return true
}

// Toggle adds repo when absent and removes it otherwise. It returns the new state.
func (s *Store) Toggle(repo domain.Repository) bool {
	if s.Remove(repo.ID) {
		return false
	}
	return s.Add(repo)
}

func (s *Store) IsBookmarked(id int64) bool {
	_, ok := s.Get(id)
	return ok
}

// Get returns the bookmark with the given id.
func (s *Store) Get(id int64) (domain.Bookmark, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.load() {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Bookmark{}, false
}

// List returns all bookmarks in insertion order.
func (s *Store) List() []domain.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) Count() int {
	return len(s.List())
}

// Clear removes every bookmark.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save([]domain.Bookmark{})
}

// Export returns the bookmarks as an indented JSON array.
func (s *Store) Export() string {
	data, err := json.MarshalIndent(s.List(), "", "  ")
	if err != nil {
		s.logger.Warn("failed to export bookmarks", zap.Error(err))
		return "[]"
	}
	return string(data)
}

// Import replaces the bookmarks with the JSON array in data. It returns false,
// leaving the stored bookmarks untouched, when data is not a JSON array of
// bookmark records.
func (s *Store) Import(data string) bool {
	var probe any
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		s.logger.Warn("bookmark import is not valid JSON", zap.Error(err))
		return false
	}
	if _, ok := probe.([]any); !ok {
		s.logger.Warn("bookmark import is not an array")
		return false
	}
	var bookmarks []domain.Bookmark
	if err := json.Unmarshal([]byte(data), &bookmarks); err != nil {
		s.logger.Warn("bookmark import has malformed records", zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(bookmarks)
	return true
}
