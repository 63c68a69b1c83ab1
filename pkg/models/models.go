package models

import "time"

// CrawlStatus is the outcome class recorded in the crawl ledger.
type CrawlStatus string

const (
	StatusSuccess CrawlStatus = "SUCCESS"
	StatusError   CrawlStatus = "ERROR"
)

// Post is one captured unit of content. PostURL is the natural key: a post is
// persisted at most once and never updated afterwards.
type Post struct {
	ID            int       `json:"id,omitempty"`
	Account       string    `json:"account"`
	PostURL       string    `json:"post_url"`
	OrdinalInScan int       `json:"ordinal_in_scan"`
	ImageURL      string    `json:"image_url,omitempty"`
	Caption       string    `json:"caption,omitempty"`
	PostedAt      string    `json:"posted_at,omitempty"`
	Hashtags      []string  `json:"hashtags"`
	Mentions      []string  `json:"mentions"`
	ExtractedAt   time.Time `json:"extracted_at"`
	CapturedAt    time.Time `json:"captured_at,omitempty"`
}

// LedgerEntry is the audit record for one crawl attempt. Every attempt,
// successful or not, appends exactly one entry.
type LedgerEntry struct {
	ID           int         `json:"id,omitempty"`
	Account      string      `json:"account"`
	Status       CrawlStatus `json:"status"`
	AttemptedAt  time.Time   `json:"attempted_at"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// CrawlOutcome summarizes one crawl driver invocation for the caller.
type CrawlOutcome struct {
	Account      string      `json:"account"`
	Status       CrawlStatus `json:"status"`
	NewPostCount int         `json:"new_post_count"`
	Err          error       `json:"-"`
}

// AccountExport is the self-contained export record for one account.
type AccountExport struct {
	Account    string        `json:"account"`
	ExportedAt time.Time     `json:"exported_at"`
	History    []LedgerEntry `json:"history"`
	Posts      []Post        `json:"posts"`
}

// Statistics aggregates the ledger across all accounts.
type Statistics struct {
	TotalAccounts    int        `json:"total_accounts"`
	TotalCrawls      int        `json:"total_crawls"`
	SuccessfulCrawls int        `json:"successful_crawls"`
	SuccessRate      float64    `json:"success_rate"`
	LastCrawl        *time.Time `json:"last_crawl,omitempty"`
}
