package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcrawler/pkg/auth"
	"igcrawler/pkg/browser"
	crawlerrors "igcrawler/pkg/errors"
)

const baseURL = "https://ig.test"

// stubSource is a credential source with a fixed answer.
type stubSource struct {
	creds *auth.Credentials
	err   error
}

func (s *stubSource) GetCredentials() (*auth.Credentials, error) {
	return s.creds, s.err
}

func validSource() *stubSource {
	return &stubSource{creds: &auth.Credentials{Username: "testuser", Password: "secret"}}
}

func newManager(driver browser.Driver, creds auth.Source) *Manager {
	return NewManager(driver, creds, baseURL, time.Millisecond)
}

func TestDetectStatusAuthenticated(t *testing.T) {
	driver := browser.NewFakeDriver()
	page := driver.AddPage(baseURL)
	page.Add(`nav a[href="/direct/inbox/"]`, "Inbox", nil)
	require.NoError(t, driver.Navigate(baseURL))

	m := newManager(driver, validSource())
	assert.Equal(t, StatusAuthenticated, m.DetectStatus())
}

func TestDetectStatusLoginForm(t *testing.T) {
	driver := browser.NewFakeDriver()
	page := driver.AddPage(baseURL)
	page.Add(`form input[name="username"]`, "", nil)
	require.NoError(t, driver.Navigate(baseURL))

	m := newManager(driver, validSource())
	assert.Equal(t, StatusUnauthenticated, m.DetectStatus())
}

func TestDetectStatusAmbiguousFailsSafe(t *testing.T) {
	driver := browser.NewFakeDriver()
	driver.AddPage(baseURL)
	require.NoError(t, driver.Navigate(baseURL))

	m := newManager(driver, validSource())
	assert.Equal(t, StatusUnauthenticated, m.DetectStatus(),
		"a page with neither marker set must not be treated as authenticated")
}

func TestDetectStatusProbeErrorFailsSafe(t *testing.T) {
	driver := browser.NewFakeDriver()
	driver.AddPage(baseURL)
	require.NoError(t, driver.Navigate(baseURL))
	driver.FindErr = crawlerrors.NewDriverError("session gone", nil)

	m := newManager(driver, validSource())
	assert.Equal(t, StatusUnauthenticated, m.DetectStatus())
}

// loginPage builds a login form page. With markerAfter set the page also
// carries an authenticated marker, standing in for the post-submit redirect
// the fake driver does not model.
func loginPage(driver *browser.FakeDriver, markerAfter bool) (*browser.FakeElement, *browser.FakeElement, *browser.FakeElement) {
	page := driver.AddPage(baseURL + "/accounts/login/")
	user := page.Add(`input[name="username"]`, "", nil)
	pass := page.Add(`input[name="password"]`, "", nil)
	submit := page.Add(`form button[type="submit"]`, "Log in", nil)
	if markerAfter {
		page.Add(`svg[aria-label="Home"]`, "", nil)
	}
	return user, pass, submit
}

func TestLoginFillsAndSubmits(t *testing.T) {
	driver := browser.NewFakeDriver()
	user, pass, submit := loginPage(driver, true)
	dialog := driver.Pages[baseURL+"/accounts/login/"].Add(`div[role="dialog"] button`, "나중에 하기", nil)

	m := newManager(driver, validSource())
	status, err := m.Login(&auth.Credentials{Username: "testuser", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, status)

	assert.Equal(t, []string{"testuser"}, driver.Filled[user])
	assert.Equal(t, []string{"secret"}, driver.Filled[pass])
	require.Len(t, driver.Clicked, 2)
	assert.Same(t, submit, driver.Clicked[0])
	assert.Same(t, dialog, driver.Clicked[1], "the post-login prompt is dismissed")
}

func TestLoginDismissIgnoresUnknownDialogs(t *testing.T) {
	driver := browser.NewFakeDriver()
	_, _, submit := loginPage(driver, true)
	driver.Pages[baseURL+"/accounts/login/"].Add(`div[role="dialog"] button`, "Turn on notifications", nil)

	m := newManager(driver, validSource())
	status, err := m.Login(&auth.Credentials{Username: "testuser", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, status)

	require.Len(t, driver.Clicked, 1, "an unrecognized dialog button is left alone")
	assert.Same(t, submit, driver.Clicked[0])
}

func TestLoginRejectedStaysUnauthenticated(t *testing.T) {
	driver := browser.NewFakeDriver()
	loginPage(driver, false)

	m := newManager(driver, validSource())
	status, err := m.Login(&auth.Credentials{Username: "testuser", Password: "wrong"})
	require.NoError(t, err)
	assert.Equal(t, StatusUnauthenticated, status,
		"a rejected login leaves the form on screen")
}

func TestLoginMissingFormFields(t *testing.T) {
	driver := browser.NewFakeDriver()
	driver.AddPage(baseURL + "/accounts/login/")

	m := newManager(driver, validSource())
	status, err := m.Login(&auth.Credentials{Username: "testuser", Password: "secret"})
	require.Error(t, err)
	assert.Equal(t, StatusLoginFailed, status)
	assert.True(t, crawlerrors.IsType(err, crawlerrors.ErrorTypeDriver))
}

func TestEnsureAuthenticatedMissingCredentials(t *testing.T) {
	driver := browser.NewFakeDriver()

	m := newManager(driver, &stubSource{err: auth.ErrCredentialsNotFound})
	err := m.EnsureAuthenticated()

	require.Error(t, err)
	assert.True(t, crawlerrors.IsType(err, crawlerrors.ErrorTypeAuth))
	assert.Empty(t, driver.Navigations, "missing credentials short-circuit before any navigation")
}

func TestEnsureAuthenticatedIncompleteCredentials(t *testing.T) {
	driver := browser.NewFakeDriver()

	m := newManager(driver, &stubSource{creds: &auth.Credentials{Username: "testuser"}})
	err := m.EnsureAuthenticated()

	require.Error(t, err)
	assert.True(t, crawlerrors.IsType(err, crawlerrors.ErrorTypeAuth))
	assert.Empty(t, driver.Navigations)
}

func TestEnsureAuthenticatedAlreadyLoggedIn(t *testing.T) {
	driver := browser.NewFakeDriver()
	page := driver.AddPage(baseURL)
	page.Add(`svg[aria-label="Home"]`, "", nil)
	require.NoError(t, driver.Navigate(baseURL))
	navsBefore := len(driver.Navigations)

	m := newManager(driver, validSource())
	require.NoError(t, m.EnsureAuthenticated())
	assert.Len(t, driver.Navigations, navsBefore, "no login attempt when already authenticated")
}

func TestEnsureAuthenticatedPerformsLogin(t *testing.T) {
	driver := browser.NewFakeDriver()
	page := driver.AddPage(baseURL)
	page.Add(`form input[name="username"]`, "", nil)
	loginPage(driver, true)
	require.NoError(t, driver.Navigate(baseURL))

	m := newManager(driver, validSource())
	require.NoError(t, m.EnsureAuthenticated())
	assert.Contains(t, driver.Navigations, baseURL+"/accounts/login/")
}

func TestEnsureAuthenticatedLoginFails(t *testing.T) {
	driver := browser.NewFakeDriver()
	page := driver.AddPage(baseURL)
	page.Add(`form input[name="username"]`, "", nil)
	loginPage(driver, false)
	require.NoError(t, driver.Navigate(baseURL))

	m := newManager(driver, validSource())
	err := m.EnsureAuthenticated()
	require.Error(t, err)
	assert.True(t, crawlerrors.IsType(err, crawlerrors.ErrorTypeAuth))
}

func TestSetDismissPhrases(t *testing.T) {
	driver := browser.NewFakeDriver()
	loginPage(driver, true)
	dialog := driver.Pages[baseURL+"/accounts/login/"].Add(`div[role="dialog"] button`, "Später", nil)

	m := newManager(driver, validSource())
	m.SetDismissPhrases([]string{"Später"})

	_, err := m.Login(&auth.Credentials{Username: "testuser", Password: "secret"})
	require.NoError(t, err)
	assert.Contains(t, driver.Clicked, dialog)
}
