package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcrawler/pkg/browser"
	crawlerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/models"
	"igcrawler/pkg/storage"
)

const baseURL = "https://ig.test"

type stubSession struct {
	err   error
	calls int
}

func (s *stubSession) EnsureAuthenticated() error {
	s.calls++
	return s.err
}

type stubDiscoverer struct {
	posts   []models.Post
	err     error
	panics  bool
	account string
	profile string
	called  int
}

func (s *stubDiscoverer) DiscoverNewPosts(account, profileURL string) ([]models.Post, error) {
	s.called++
	s.account = account
	s.profile = profileURL
	if s.panics {
		panic("selector index out of range")
	}
	return s.posts, s.err
}

func somePosts(urls ...string) []models.Post {
	var posts []models.Post
	for i, u := range urls {
		posts = append(posts, models.Post{
			Account:       "natgeo",
			PostURL:       u,
			OrdinalInScan: i + 1,
		})
	}
	return posts
}

func newTestDriver(t *testing.T, session SessionManager, engine Discoverer, store *storage.MemoryStore) *Driver {
	t.Helper()
	fake := browser.NewFakeDriver()
	fake.AddPage(baseURL + "/natgeo/")
	return New(fake, session, engine, store, store, baseURL, 0)
}

func TestCrawlAccountSuccess(t *testing.T) {
	store := storage.NewMemoryStore()
	discoverer := &stubDiscoverer{posts: somePosts("https://ig.test/p/a/", "https://ig.test/p/b/")}
	session := &stubSession{}
	driver := newTestDriver(t, session, discoverer, store)

	outcome := driver.CrawlAccount("natgeo")

	assert.Equal(t, "natgeo", outcome.Account)
	assert.Equal(t, models.StatusSuccess, outcome.Status)
	assert.Equal(t, 2, outcome.NewPostCount)
	assert.NoError(t, outcome.Err)

	assert.Equal(t, 1, session.calls)
	assert.Equal(t, "natgeo", discoverer.account)
	assert.Equal(t, baseURL+"/natgeo/", discoverer.profile)
	assert.Len(t, store.Posts(), 2)

	entries := store.Ledger()
	require.Len(t, entries, 1)
	assert.Equal(t, "natgeo", entries[0].Account)
	assert.Equal(t, models.StatusSuccess, entries[0].Status)
	assert.Empty(t, entries[0].ErrorMessage)
	assert.False(t, entries[0].AttemptedAt.IsZero())
}

func TestCrawlAccountAuthFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	discoverer := &stubDiscoverer{}
	session := &stubSession{err: crawlerrors.NewAuthError("missing credentials", nil)}
	driver := newTestDriver(t, session, discoverer, store)

	outcome := driver.CrawlAccount("natgeo")

	assert.Equal(t, models.StatusError, outcome.Status)
	assert.Error(t, outcome.Err)
	assert.True(t, crawlerrors.IsType(outcome.Err, crawlerrors.ErrorTypeAuth))
	assert.Zero(t, discoverer.called, "no discovery after a failed login")

	entries := store.Ledger()
	require.Len(t, entries, 1, "a failed attempt still gets its ledger entry")
	assert.Equal(t, models.StatusError, entries[0].Status)
	assert.NotEmpty(t, entries[0].ErrorMessage)
}

func TestCrawlAccountNavigationFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	fake := browser.NewFakeDriver() // no pages: navigation fails
	driver := New(fake, &stubSession{}, &stubDiscoverer{}, store, store, baseURL, 0)

	outcome := driver.CrawlAccount("natgeo")

	assert.Equal(t, models.StatusError, outcome.Status)
	assert.Error(t, outcome.Err)

	entries := store.Ledger()
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusError, entries[0].Status)
}

func TestCrawlAccountDiscoveryFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	discoverer := &stubDiscoverer{err: crawlerrors.NewDriverError("grid scan failed", nil)}
	driver := newTestDriver(t, &stubSession{}, discoverer, store)

	outcome := driver.CrawlAccount("natgeo")

	assert.Equal(t, models.StatusError, outcome.Status)
	assert.Error(t, outcome.Err)
	assert.Empty(t, store.Posts())

	entries := store.Ledger()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ErrorMessage, "grid scan failed")
}

func TestCrawlAccountAbsorbsDedupRace(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Seed("https://ig.test/p/a/")
	discoverer := &stubDiscoverer{posts: somePosts("https://ig.test/p/a/", "https://ig.test/p/b/")}
	driver := newTestDriver(t, &stubSession{}, discoverer, store)

	outcome := driver.CrawlAccount("natgeo")

	assert.Equal(t, models.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.NewPostCount, "a lost dedup race does not count as new")
	require.Len(t, store.Ledger(), 1)
	assert.Equal(t, models.StatusSuccess, store.Ledger()[0].Status)
}

func TestCrawlAccountInsertFailureDoesNotAbort(t *testing.T) {
	store := storage.NewMemoryStore()
	store.InsertErr = crawlerrors.NewStorageError("connection lost", nil)
	discoverer := &stubDiscoverer{posts: somePosts("https://ig.test/p/a/")}
	driver := newTestDriver(t, &stubSession{}, discoverer, store)

	outcome := driver.CrawlAccount("natgeo")

	assert.Equal(t, models.StatusSuccess, outcome.Status,
		"a dropped post stays unknown and is retried next sweep")
	assert.Zero(t, outcome.NewPostCount)
	require.Len(t, store.Ledger(), 1)
}

func TestCrawlAccountLedgerFailureIsSwallowed(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AppendErr = crawlerrors.NewStorageError("connection lost", nil)
	discoverer := &stubDiscoverer{posts: somePosts("https://ig.test/p/a/")}
	driver := newTestDriver(t, &stubSession{}, discoverer, store)

	outcome := driver.CrawlAccount("natgeo")

	assert.Equal(t, models.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, outcome.NewPostCount,
		"the ledger append failing must not demote the attempt")
}

func TestCrawlAccountRecoversFromPanic(t *testing.T) {
	store := storage.NewMemoryStore()
	discoverer := &stubDiscoverer{panics: true}
	driver := newTestDriver(t, &stubSession{}, discoverer, store)

	var outcome models.CrawlOutcome
	require.NotPanics(t, func() {
		outcome = driver.CrawlAccount("natgeo")
	})

	assert.Equal(t, models.StatusError, outcome.Status)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "panicked")

	entries := store.Ledger()
	require.Len(t, entries, 1, "even a panic produces exactly one ledger entry")
	assert.Equal(t, models.StatusError, entries[0].Status)
}
