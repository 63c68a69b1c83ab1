package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"igcrawler/pkg/logger"
	"igcrawler/pkg/models"
)

// AccountCrawler runs one crawl attempt for one account. Implementations
// must not return errors or panic past this boundary; the outcome carries
// the result either way.
type AccountCrawler interface {
	CrawlAccount(handle string) models.CrawlOutcome
}

// stopTimeout bounds how long Stop waits for the background loop to observe
// the stop signal. An in-progress account crawl is never interrupted.
const stopTimeout = 5 * time.Second

// Status is a point-in-time snapshot of the scheduler, not a live view
type Status struct {
	Running       bool      `json:"running"`
	AccountsCount int       `json:"accounts_count"`
	IntervalHours int       `json:"interval_hours"`
	NextRunAt     time.Time `json:"next_run_at,omitempty"`
	Accounts      []string  `json:"accounts"`
}

// Scheduler sweeps all configured accounts on a fixed interval. Sweeps are
// single-flight by construction: one loop runs them sequentially and only
// checks for due work between sweeps.
type Scheduler struct {
	crawler         AccountCrawler
	accountInterval time.Duration

	mu            sync.Mutex
	accounts      []string
	intervalHours int
	running       bool
	nextRunAt     time.Time

	cancel   context.CancelFunc
	stopChan chan struct{}
	done     chan struct{}

	// Serializes sweeps against misuse (RunOnce while running).
	sweepMu sync.Mutex

	log logger.Logger
}

// New creates a scheduler over the given crawl driver
func New(crawler AccountCrawler, accounts []string, intervalHours int, accountInterval time.Duration) *Scheduler {
	s := &Scheduler{
		crawler:         crawler,
		accountInterval: accountInterval,
		intervalHours:   intervalHours,
		log:             logger.GetLogger(),
	}
	for _, a := range accounts {
		s.accounts = append(s.accounts, a)
	}
	return s
}

// AddAccount registers an account for future sweeps. A sweep in progress is
// not affected.
func (s *Scheduler) AddAccount(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a == handle {
			s.log.WithField("account", handle).Warn("Account already registered")
			return
		}
	}
	s.accounts = append(s.accounts, handle)
	s.log.WithField("account", handle).Info("Account added")
}

// RemoveAccount unregisters an account. Already-captured data is untouched.
func (s *Scheduler) RemoveAccount(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.accounts {
		if a == handle {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			s.log.WithField("account", handle).Info("Account removed")
			return
		}
	}
	s.log.WithField("account", handle).Warn("Account not registered")
}

// SetInterval changes the sweep interval. While running, the new interval
// takes effect on the next Start.
func (s *Scheduler) SetInterval(hours int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.intervalHours = hours
	if s.running {
		s.log.WithField("interval_hours", hours).Warn("Interval updated, effective after restart")
	} else {
		s.log.WithField("interval_hours", hours).Info("Interval updated")
	}
}

// Start begins scheduling. The first sweep runs synchronously before the
// background trigger loop is launched; calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("Scheduler already running")
		return
	}

	interval := time.Duration(s.intervalHours) * time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	s.mu.Unlock()

	logger.LogComponentStart("scheduler", map[string]interface{}{
		"interval_hours": s.intervalHours,
	})

	// Immediate first sweep, observed by the caller.
	s.sweep(ctx)

	s.mu.Lock()
	if s.running {
		s.nextRunAt = time.Now().Add(interval)
	}
	stopChan := s.stopChan
	done := s.done
	s.mu.Unlock()

	go s.loop(ctx, interval, stopChan, done)
}

// loop is the background trigger. It only looks for due work between sweeps,
// so a new sweep can never start while one is in flight.
func (s *Scheduler) loop(ctx context.Context, interval time.Duration, stopChan <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
			s.mu.Lock()
			if s.running {
				s.nextRunAt = time.Now().Add(interval)
			}
			s.mu.Unlock()
		case <-stopChan:
			return
		}
	}
}

// Stop cancels the trigger loop. It waits a bounded time for the loop to
// observe the signal, then returns; a sweep already crawling an account runs
// that account to completion.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.log.Warn("Scheduler not running")
		return
	}
	s.running = false
	s.nextRunAt = time.Time{}
	cancel := s.cancel
	stopChan := s.stopChan
	done := s.done
	s.mu.Unlock()

	cancel()
	close(stopChan)

	select {
	case <-done:
	case <-time.After(stopTimeout):
		s.log.Warn("Timed out waiting for scheduler loop to stop")
	}

	logger.LogComponentStop("scheduler", "stop requested")
}

// RunOnce performs exactly one synchronous sweep, bypassing the trigger
func (s *Scheduler) RunOnce() {
	s.log.Info("Running one-off sweep")
	s.sweep(context.Background())
}

// sweep crawls every registered account in registration order, pacing
// between accounts. The account set is snapshotted at sweep start.
func (s *Scheduler) sweep(ctx context.Context) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	s.mu.Lock()
	accounts := make([]string, len(s.accounts))
	copy(accounts, s.accounts)
	s.mu.Unlock()

	if len(accounts) == 0 {
		s.log.Warn("No accounts registered, skipping sweep")
		return
	}

	sweepID := uuid.New().String()
	log := s.log.WithField("sweep_id", sweepID)

	log.InfoWithFields("Sweep started", map[string]interface{}{
		"accounts": len(accounts),
	})
	start := time.Now()

	limiter := rate.NewLimiter(rate.Every(s.accountInterval), 1)
	crawled := 0
	for _, account := range accounts {
		// The limiter carries the fixed inter-account delay; waiting on the
		// sweep context lets Stop interrupt a pending delay without touching
		// an in-progress crawl.
		if err := limiter.Wait(ctx); err != nil {
			log.Info("Sweep interrupted, remaining accounts skipped")
			break
		}

		s.crawler.CrawlAccount(account)
		crawled++
	}

	log.InfoWithFields("Sweep finished", map[string]interface{}{
		"accounts_crawled": crawled,
		"duration":         time.Since(start),
	})
}

// GetStatus returns a snapshot of the scheduler state
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]string, len(s.accounts))
	copy(accounts, s.accounts)

	return Status{
		Running:       s.running,
		AccountsCount: len(accounts),
		IntervalHours: s.intervalHours,
		NextRunAt:     s.nextRunAt,
		Accounts:      accounts,
	}
}
