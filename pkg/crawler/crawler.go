package crawler

import (
	"fmt"
	"time"

	"igcrawler/pkg/browser"
	crawlerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/models"
)

// SessionManager guarantees the browser session is authenticated
type SessionManager interface {
	EnsureAuthenticated() error
}

// Discoverer produces the ordered list of new posts for a loaded profile page
type Discoverer interface {
	DiscoverNewPosts(account, profileURL string) ([]models.Post, error)
}

// PostStore persists captured posts keyed by URL
type PostStore interface {
	Insert(post *models.Post) error
}

// Ledger records one entry per crawl attempt
type Ledger interface {
	Append(entry models.LedgerEntry) error
}

// Driver runs one full crawl attempt for one account. Every invocation
// appends exactly one ledger entry and never returns an error to the caller:
// failures are folded into the outcome.
type Driver struct {
	browser      browser.Driver
	session      SessionManager
	engine       Discoverer
	posts        PostStore
	ledger       Ledger
	baseURL      string
	pageLoadWait time.Duration
	log          logger.Logger
}

// New creates a crawl driver
func New(b browser.Driver, session SessionManager, engine Discoverer, posts PostStore, ledger Ledger, baseURL string, pageLoadWait time.Duration) *Driver {
	return &Driver{
		browser:      b,
		session:      session,
		engine:       engine,
		posts:        posts,
		ledger:       ledger,
		baseURL:      baseURL,
		pageLoadWait: pageLoadWait,
		log:          logger.GetLogger(),
	}
}

// CrawlAccount performs one attempt for the given account handle
func (d *Driver) CrawlAccount(handle string) models.CrawlOutcome {
	log := d.log.WithField("account", handle)
	log.Info("Starting crawl attempt")

	outcome := d.attempt(handle)

	entry := models.LedgerEntry{
		Account:     handle,
		Status:      outcome.Status,
		AttemptedAt: time.Now(),
	}
	if outcome.Err != nil {
		entry.ErrorMessage = outcome.Err.Error()
	}

	// The ledger append must not demote or abort the attempt.
	if err := d.ledger.Append(entry); err != nil {
		log.WithError(err).Error("Failed to append ledger entry")
	}

	logger.LogCrawlAttempt(handle, outcome.Status == models.StatusSuccess, outcome.NewPostCount, outcome.Err)
	return outcome
}

// attempt runs the crawl steps and converts every failure into an outcome.
func (d *Driver) attempt(handle string) (outcome models.CrawlOutcome) {
	outcome = models.CrawlOutcome{Account: handle}

	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("account", handle).
				WithField("panic", fmt.Sprintf("%v", r)).
				Error("Crawl attempt panicked")
			outcome.Status = models.StatusError
			outcome.Err = fmt.Errorf("crawl panicked: %v", r)
		}
	}()

	if err := d.session.EnsureAuthenticated(); err != nil {
		outcome.Status = models.StatusError
		outcome.Err = err
		return outcome
	}

	profileURL := fmt.Sprintf("%s/%s/", d.baseURL, handle)
	if err := d.browser.Navigate(profileURL); err != nil {
		outcome.Status = models.StatusError
		outcome.Err = err
		return outcome
	}
	time.Sleep(d.pageLoadWait)

	posts, err := d.engine.DiscoverNewPosts(handle, profileURL)
	if err != nil {
		outcome.Status = models.StatusError
		outcome.Err = err
		return outcome
	}

	for i := range posts {
		if err := d.posts.Insert(&posts[i]); err != nil {
			if crawlerrors.IsAlreadyExists(err) {
				// Lost the dedup race; the post is saved either way.
				d.log.WithField("post_url", posts[i].PostURL).Debug("Post already saved, skipping")
				continue
			}
			// Dropped from this attempt; it stays unknown and will be
			// rediscovered next sweep.
			d.log.WithError(err).WithField("post_url", posts[i].PostURL).Warn("Failed to persist post")
			continue
		}
		outcome.NewPostCount++
	}

	outcome.Status = models.StatusSuccess
	return outcome
}
