package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	crawlerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/models"
)

// Store persists captured posts and the crawl ledger. Both tables are
// append-only under normal operation.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// NewStore creates a store over an open database connection
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		log: logger.GetLogger(),
	}
}

// EnsureSchema creates the tables if they do not exist. Existing data is
// never touched.
func (s *Store) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id SERIAL PRIMARY KEY,
			account TEXT NOT NULL,
			post_url TEXT UNIQUE NOT NULL,
			ordinal_in_scan INTEGER NOT NULL,
			image_url TEXT,
			caption TEXT,
			posted_at TEXT,
			hashtags TEXT NOT NULL DEFAULT '[]',
			mentions TEXT NOT NULL DEFAULT '[]',
			extracted_at TIMESTAMPTZ NOT NULL,
			captured_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_account ON posts (account)`,
		`CREATE TABLE IF NOT EXISTS crawl_history (
			id SERIAL PRIMARY KEY,
			account TEXT NOT NULL,
			status TEXT NOT NULL,
			attempted_at TIMESTAMPTZ NOT NULL,
			error_message TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crawl_history_account ON crawl_history (account)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return crawlerrors.NewStorageError("creating schema", err)
		}
	}

	return nil
}

// Exists reports whether a post with the given URL was already captured
func (s *Store) Exists(postURL string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM posts WHERE post_url = $1`, postURL).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, crawlerrors.NewStorageError("dedup lookup", err)
	}
	return true, nil
}

// Insert persists one post. A unique-key conflict on post_url returns
// ErrAlreadyExists; callers treat it as "already saved".
func (s *Store) Insert(post *models.Post) error {
	hashtags, err := json.Marshal(post.Hashtags)
	if err != nil {
		return crawlerrors.NewStorageError("encoding hashtags", err)
	}
	mentions, err := json.Marshal(post.Mentions)
	if err != nil {
		return crawlerrors.NewStorageError("encoding mentions", err)
	}

	query := `
		INSERT INTO posts (account, post_url, ordinal_in_scan, image_url, caption,
			posted_at, hashtags, mentions, extracted_at, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	now := time.Now()
	err = s.db.QueryRow(query,
		post.Account, post.PostURL, post.OrdinalInScan, post.ImageURL, post.Caption,
		post.PostedAt, string(hashtags), string(mentions), post.ExtractedAt, now,
	).Scan(&post.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return crawlerrors.ErrAlreadyExists
		}
		return crawlerrors.NewStorageError("inserting post", err)
	}

	post.CapturedAt = now
	return nil
}

// Append records one crawl attempt in the ledger
func (s *Store) Append(entry models.LedgerEntry) error {
	query := `
		INSERT INTO crawl_history (account, status, attempted_at, error_message)
		VALUES ($1, $2, $3, NULLIF($4, ''))`

	if _, err := s.db.Exec(query, entry.Account, string(entry.Status), entry.AttemptedAt, entry.ErrorMessage); err != nil {
		return crawlerrors.NewStorageError("appending ledger entry", err)
	}
	return nil
}

// History returns the most recent ledger entries for an account, newest first
func (s *Store) History(account string, limit int) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, account, status, attempted_at, COALESCE(error_message, '')
		FROM crawl_history
		WHERE account = $1
		ORDER BY attempted_at DESC
		LIMIT $2`

	rows, err := s.db.Query(query, account, limit)
	if err != nil {
		return nil, crawlerrors.NewStorageError("querying history", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		var status string
		if err := rows.Scan(&e.ID, &e.Account, &status, &e.AttemptedAt, &e.ErrorMessage); err != nil {
			return nil, crawlerrors.NewStorageError("scanning history row", err)
		}
		e.Status = models.CrawlStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, crawlerrors.NewStorageError("reading history rows", err)
	}

	return entries, nil
}

// PostsByAccount returns an account's captured posts, oldest first
func (s *Store) PostsByAccount(account string) ([]models.Post, error) {
	query := `
		SELECT id, account, post_url, ordinal_in_scan, COALESCE(image_url, ''),
			COALESCE(caption, ''), COALESCE(posted_at, ''), hashtags, mentions,
			extracted_at, captured_at
		FROM posts
		WHERE account = $1
		ORDER BY captured_at ASC, id ASC`

	rows, err := s.db.Query(query, account)
	if err != nil {
		return nil, crawlerrors.NewStorageError("querying posts", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// LatestPosts returns an account's most recently captured posts
func (s *Store) LatestPosts(account string, limit int) ([]models.Post, error) {
	query := `
		SELECT id, account, post_url, ordinal_in_scan, COALESCE(image_url, ''),
			COALESCE(caption, ''), COALESCE(posted_at, ''), hashtags, mentions,
			extracted_at, captured_at
		FROM posts
		WHERE account = $1
		ORDER BY captured_at DESC, id DESC
		LIMIT $2`

	rows, err := s.db.Query(query, account, limit)
	if err != nil {
		return nil, crawlerrors.NewStorageError("querying latest posts", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// NewPostsCount returns how many posts were captured for an account within
// the last given number of days
func (s *Store) NewPostsCount(account string, days int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM posts
		WHERE account = $1
		AND captured_at >= CURRENT_TIMESTAMP - $2 * INTERVAL '1 day'`

	var count int
	if err := s.db.QueryRow(query, account, days).Scan(&count); err != nil {
		return 0, crawlerrors.NewStorageError("counting new posts", err)
	}
	return count, nil
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		var p models.Post
		var hashtags, mentions string
		if err := rows.Scan(&p.ID, &p.Account, &p.PostURL, &p.OrdinalInScan, &p.ImageURL,
			&p.Caption, &p.PostedAt, &hashtags, &mentions, &p.ExtractedAt, &p.CapturedAt); err != nil {
			return nil, crawlerrors.NewStorageError("scanning post row", err)
		}
		if err := json.Unmarshal([]byte(hashtags), &p.Hashtags); err != nil {
			p.Hashtags = []string{}
		}
		if err := json.Unmarshal([]byte(mentions), &p.Mentions); err != nil {
			p.Mentions = []string{}
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, crawlerrors.NewStorageError("reading post rows", err)
	}
	return posts, nil
}

// Export assembles the self-contained export record for one account
func (s *Store) Export(account string) (*models.AccountExport, error) {
	history, err := s.History(account, 100)
	if err != nil {
		return nil, err
	}
	posts, err := s.PostsByAccount(account)
	if err != nil {
		return nil, err
	}

	if history == nil {
		history = []models.LedgerEntry{}
	}
	if posts == nil {
		posts = []models.Post{}
	}

	return &models.AccountExport{
		Account:    account,
		ExportedAt: time.Now(),
		History:    history,
		Posts:      posts,
	}, nil
}

// Statistics aggregates the ledger across all accounts
func (s *Store) Statistics() (*models.Statistics, error) {
	stats := &models.Statistics{}

	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT account) FROM crawl_history`).Scan(&stats.TotalAccounts); err != nil {
		return nil, crawlerrors.NewStorageError("counting accounts", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM crawl_history`).Scan(&stats.TotalCrawls); err != nil {
		return nil, crawlerrors.NewStorageError("counting crawls", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM crawl_history WHERE status = 'SUCCESS'`).Scan(&stats.SuccessfulCrawls); err != nil {
		return nil, crawlerrors.NewStorageError("counting successful crawls", err)
	}

	var last sql.NullTime
	if err := s.db.QueryRow(`SELECT MAX(attempted_at) FROM crawl_history`).Scan(&last); err != nil {
		return nil, crawlerrors.NewStorageError("finding last crawl", err)
	}
	if last.Valid {
		stats.LastCrawl = &last.Time
	}

	if stats.TotalCrawls > 0 {
		stats.SuccessRate = float64(stats.SuccessfulCrawls) / float64(stats.TotalCrawls) * 100
	}

	return stats, nil
}

// Init deletes all data while keeping the schema. Used by the explicit
// database-init command only.
func (s *Store) Init() error {
	for _, table := range []string{"posts", "crawl_history"} {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return crawlerrors.NewStorageError("clearing table "+table, err)
		}
		s.log.WithField("table", table).Info("Table cleared")
	}
	return nil
}

// Info returns per-table row counts
func (s *Store) Info() (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"posts", "crawl_history"} {
		var count int
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return nil, crawlerrors.NewStorageError("counting rows in "+table, err)
		}
		counts[table] = count
	}
	return counts, nil
}
