package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcrawler/pkg/models"
)

// recordingCrawler records crawled handles in call order.
type recordingCrawler struct {
	mu      sync.Mutex
	crawled []string

	// Optional hooks.
	started chan string
	onCrawl func(handle string)
}

func (c *recordingCrawler) CrawlAccount(handle string) models.CrawlOutcome {
	c.mu.Lock()
	c.crawled = append(c.crawled, handle)
	c.mu.Unlock()

	if c.onCrawl != nil {
		c.onCrawl(handle)
	}
	if c.started != nil {
		c.started <- handle
	}
	return models.CrawlOutcome{Account: handle, Status: models.StatusSuccess}
}

func (c *recordingCrawler) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.crawled))
	copy(out, c.crawled)
	return out
}

func TestRunOnceCrawlsAllAccountsInOrder(t *testing.T) {
	crawler := &recordingCrawler{}
	s := New(crawler, []string{"alpha", "beta", "gamma"}, 24, time.Millisecond)

	s.RunOnce()

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, crawler.calls(),
		"accounts are swept in registration order")
}

func TestRunOnceWithNoAccounts(t *testing.T) {
	crawler := &recordingCrawler{}
	s := New(crawler, nil, 24, time.Millisecond)

	s.RunOnce()

	assert.Empty(t, crawler.calls())
}

func TestAddAndRemoveAccount(t *testing.T) {
	crawler := &recordingCrawler{}
	s := New(crawler, []string{"alpha"}, 24, time.Millisecond)

	s.AddAccount("beta")
	s.AddAccount("beta") // duplicate, ignored
	s.AddAccount("gamma")
	s.RemoveAccount("alpha")
	s.RemoveAccount("missing") // not registered, ignored

	status := s.GetStatus()
	assert.Equal(t, []string{"beta", "gamma"}, status.Accounts)
	assert.Equal(t, 2, status.AccountsCount)

	s.RunOnce()
	assert.Equal(t, []string{"beta", "gamma"}, crawler.calls())
}

func TestSetInterval(t *testing.T) {
	s := New(&recordingCrawler{}, nil, 24, time.Millisecond)

	s.SetInterval(6)
	assert.Equal(t, 6, s.GetStatus().IntervalHours)
}

func TestStartRunsFirstSweepImmediately(t *testing.T) {
	crawler := &recordingCrawler{}
	s := New(crawler, []string{"alpha", "beta"}, 24, time.Millisecond)

	before := time.Now()
	s.Start()
	defer s.Stop()

	// Start returns only after the first sweep has completed.
	assert.Equal(t, []string{"alpha", "beta"}, crawler.calls())

	status := s.GetStatus()
	assert.True(t, status.Running)
	assert.True(t, status.NextRunAt.After(before), "the next sweep is scheduled from the tick cadence")
}

func TestStartWhileRunningIsNoOp(t *testing.T) {
	crawler := &recordingCrawler{}
	s := New(crawler, []string{"alpha"}, 24, time.Millisecond)

	s.Start()
	defer s.Stop()
	require.Len(t, crawler.calls(), 1)

	s.Start()
	assert.Len(t, crawler.calls(), 1, "a second Start must not trigger another sweep")
}

func TestStopClearsStateAndIsIdempotent(t *testing.T) {
	crawler := &recordingCrawler{}
	s := New(crawler, []string{"alpha"}, 24, time.Millisecond)

	s.Start()
	s.Stop()

	status := s.GetStatus()
	assert.False(t, status.Running)
	assert.True(t, status.NextRunAt.IsZero())

	// Stopping a stopped scheduler is a warning, not a fault.
	require.NotPanics(t, func() { s.Stop() })
}

func TestStopInterruptsInterAccountDelay(t *testing.T) {
	started := make(chan string, 3)
	crawler := &recordingCrawler{started: started}
	s := New(crawler, []string{"alpha", "beta", "gamma"}, 24, 30*time.Second)

	go s.Start()

	// First account crawled, the sweep is now pacing toward the second.
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first account was never crawled")
	}

	begin := time.Now()
	s.Stop()

	assert.Less(t, time.Since(begin), 3*time.Second,
		"Stop must interrupt the pending inter-account delay")
	assert.Equal(t, []string{"alpha"}, crawler.calls(),
		"no further accounts start after a stop request")
}

func TestSweepsDoNotOverlap(t *testing.T) {
	var active, maxActive int32
	crawler := &recordingCrawler{
		onCrawl: func(string) {
			cur := atomic.AddInt32(&active, 1)
			for {
				prev := atomic.LoadInt32(&maxActive)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxActive, prev, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&active, -1)
		},
	}
	s := New(crawler, []string{"alpha", "beta"}, 24, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RunOnce()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive), "sweeps are single-flight")
	assert.Len(t, crawler.calls(), 6)
}

func TestSweepSnapshotsAccountSet(t *testing.T) {
	crawler := &recordingCrawler{}
	s := New(crawler, []string{"alpha"}, 24, time.Millisecond)
	crawler.onCrawl = func(handle string) {
		if handle == "alpha" {
			s.AddAccount("late")
		}
	}

	s.RunOnce()

	assert.Equal(t, []string{"alpha"}, crawler.calls(),
		"accounts added mid-sweep wait for the next sweep")
	assert.Equal(t, []string{"alpha", "late"}, s.GetStatus().Accounts)

	s.RunOnce()
	assert.Equal(t, []string{"alpha", "alpha", "late"}, crawler.calls())
}
