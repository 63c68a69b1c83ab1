package session

import (
	"errors"
	"time"

	"igcrawler/pkg/auth"
	"igcrawler/pkg/browser"
	crawlerrors "igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
)

// Status is the authentication state of the browser session
type Status string

const (
	StatusUnknown         Status = "UNKNOWN"
	StatusAuthenticated   Status = "AUTHENTICATED"
	StatusUnauthenticated Status = "UNAUTHENTICATED"
	StatusLoginFailed     Status = "LOGIN_FAILED"
)

// Marker chains used to classify the current page. Ordered fallbacks: layouts
// change, selectors get appended.
var (
	// Affordances only a logged-in session sees.
	authenticatedMarkers = browser.SelectorChain{
		`nav a[href="/direct/inbox/"]`,
		`a[href="/accounts/edit/"]`,
		`svg[aria-label="Home"]`,
		`nav[role="navigation"] img[alt$="profile picture"]`,
	}

	// The login form itself.
	loginFormMarkers = browser.SelectorChain{
		`form input[name="username"]`,
		`form input[name="password"]`,
		`form button[type="submit"]`,
	}

	usernameField = browser.SelectorChain{
		`input[name="username"]`,
		`input[aria-label="Phone number, username, or email"]`,
	}

	passwordField = browser.SelectorChain{
		`input[name="password"]`,
	}

	submitButton = browser.SelectorChain{
		`form button[type="submit"]`,
		`button[type="submit"]`,
	}

	dismissButtons = browser.SelectorChain{
		`div[role="dialog"] button`,
		`div[role="presentation"] button`,
	}
)

// DefaultDismissPhrases is the vocabulary matched against dialog buttons
// after login. The service is operated against the Korean locale first.
var DefaultDismissPhrases = []string{
	"나중에 하기",
	"취소",
	"Not Now",
	"Not now",
	"Cancel",
}

// maxDismissCandidates bounds the dialog-button scan after login.
const maxDismissCandidates = 12

// Manager drives the session state machine over a browser driver
type Manager struct {
	driver         browser.Driver
	creds          auth.Source
	baseURL        string
	pageLoadWait   time.Duration
	dismissPhrases []string
	log            logger.Logger
}

// NewManager creates a session manager
func NewManager(driver browser.Driver, creds auth.Source, baseURL string, pageLoadWait time.Duration) *Manager {
	return &Manager{
		driver:         driver,
		creds:          creds,
		baseURL:        baseURL,
		pageLoadWait:   pageLoadWait,
		dismissPhrases: DefaultDismissPhrases,
		log:            logger.GetLogger(),
	}
}

// SetDismissPhrases replaces the post-login dialog vocabulary, for locales
// the default set does not cover.
func (m *Manager) SetDismissPhrases(phrases []string) {
	m.dismissPhrases = phrases
}

// DetectStatus classifies the current page. Any authenticated marker wins;
// otherwise the session requires login. Ambiguity (neither marker set found,
// or the probe itself failing) is treated as unauthenticated, never as
// authenticated.
func (m *Manager) DetectStatus() Status {
	found, err := authenticatedMarkers.Matches(m.driver)
	if err != nil {
		m.log.WithError(err).Debug("Authenticated-marker probe failed, assuming unauthenticated")
		return StatusUnauthenticated
	}
	if found {
		return StatusAuthenticated
	}

	found, err = loginFormMarkers.Matches(m.driver)
	if err != nil {
		m.log.WithError(err).Debug("Login-form probe failed, assuming unauthenticated")
		return StatusUnauthenticated
	}
	if found {
		return StatusUnauthenticated
	}

	// Neither marker set present: fail safe.
	m.log.Debug("Ambiguous page state, assuming unauthenticated")
	return StatusUnauthenticated
}

// Login performs one login attempt with the given credentials and returns
// the resulting session status.
func (m *Manager) Login(creds *auth.Credentials) (Status, error) {
	m.log.WithField("username", creds.Username).Info("Attempting login")

	if err := m.driver.Navigate(m.baseURL + "/accounts/login/"); err != nil {
		return StatusLoginFailed, err
	}
	time.Sleep(m.pageLoadWait)

	userEl, err := usernameField.FindFirst(m.driver)
	if err != nil {
		return StatusLoginFailed, err
	}
	if userEl == nil {
		return StatusLoginFailed, crawlerrors.NewDriverError("username field not found on login page", nil)
	}
	if err := m.driver.Fill(userEl, creds.Username); err != nil {
		return StatusLoginFailed, err
	}

	passEl, err := passwordField.FindFirst(m.driver)
	if err != nil {
		return StatusLoginFailed, err
	}
	if passEl == nil {
		return StatusLoginFailed, crawlerrors.NewDriverError("password field not found on login page", nil)
	}
	if err := m.driver.Fill(passEl, creds.Password); err != nil {
		return StatusLoginFailed, err
	}

	submitEl, err := submitButton.FindFirst(m.driver)
	if err != nil {
		return StatusLoginFailed, err
	}
	if submitEl == nil {
		return StatusLoginFailed, crawlerrors.NewDriverError("submit button not found on login page", nil)
	}
	if err := m.driver.Click(submitEl); err != nil {
		return StatusLoginFailed, err
	}
	time.Sleep(m.pageLoadWait)

	m.dismissPostLoginPrompt()

	status := m.DetectStatus()
	m.log.WithField("status", string(status)).Info("Login attempt finished")
	return status, nil
}

// dismissPostLoginPrompt scans dialog buttons for a known dismiss phrase and
// clicks the first match. Best-effort: no match is not an error.
func (m *Manager) dismissPostLoginPrompt() {
	candidates, err := dismissButtons.FindAll(m.driver)
	if err != nil {
		m.log.WithError(err).Debug("Dialog scan failed")
		return
	}
	if len(candidates) > maxDismissCandidates {
		candidates = candidates[:maxDismissCandidates]
	}

	for _, el := range candidates {
		text, err := m.driver.Text(el)
		if err != nil {
			continue
		}
		for _, phrase := range m.dismissPhrases {
			if text == phrase {
				if err := m.driver.Click(el); err != nil {
					m.log.WithError(err).Debug("Failed to dismiss dialog")
				} else {
					m.log.WithField("phrase", phrase).Debug("Dismissed post-login dialog")
				}
				return
			}
		}
	}
}

// EnsureAuthenticated guarantees the session is logged in, performing at most
// one login attempt. Failure is fatal for the caller's current crawl attempt.
func (m *Manager) EnsureAuthenticated() error {
	creds, err := m.creds.GetCredentials()
	if err != nil || creds == nil || creds.Username == "" || creds.Password == "" {
		if err == nil {
			err = errors.New("login credentials incomplete")
		}
		return crawlerrors.NewAuthError("missing credentials", err)
	}

	if m.DetectStatus() == StatusAuthenticated {
		m.log.Debug("Session already authenticated")
		return nil
	}

	status, err := m.Login(creds)
	if err != nil {
		return crawlerrors.NewAuthError("login failed", err)
	}
	if status != StatusAuthenticated {
		return crawlerrors.NewAuthError("login did not produce an authenticated session", nil)
	}

	return nil
}
