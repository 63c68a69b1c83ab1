package storage

import (
	"sync"
	"time"

	crawlerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/models"
)

// MemoryStore is an in-memory stand-in for Store used by tests
type MemoryStore struct {
	mu      sync.Mutex
	posts   map[string]models.Post
	order   []string
	entries []models.LedgerEntry

	// Error injection for testing.
	ExistsErr map[string]error
	InsertErr error
	AppendErr error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:     make(map[string]models.Post),
		ExistsErr: make(map[string]error),
	}
}

// Exists reports whether a post URL is already captured
func (m *MemoryStore) Exists(postURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.ExistsErr[postURL]; ok && err != nil {
		return false, err
	}
	_, ok := m.posts[postURL]
	return ok, nil
}

// Insert persists one post, enforcing post_url uniqueness
func (m *MemoryStore) Insert(post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		return m.InsertErr
	}
	if _, ok := m.posts[post.PostURL]; ok {
		return crawlerrors.ErrAlreadyExists
	}

	post.CapturedAt = time.Now()
	m.posts[post.PostURL] = *post
	m.order = append(m.order, post.PostURL)
	return nil
}

// Append records a ledger entry
func (m *MemoryStore) Append(entry models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

// Posts returns all persisted posts in insertion order
func (m *MemoryStore) Posts() []models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Post, 0, len(m.order))
	for _, url := range m.order {
		out = append(out, m.posts[url])
	}
	return out
}

// Ledger returns all appended entries in order
func (m *MemoryStore) Ledger() []models.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Seed marks a post URL as already captured
func (m *MemoryStore) Seed(postURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts[postURL] = models.Post{PostURL: postURL, CapturedAt: time.Now()}
	m.order = append(m.order, postURL)
}
