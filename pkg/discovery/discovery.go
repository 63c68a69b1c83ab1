package discovery

import (
	"net/url"
	"regexp"
	"time"

	"igcrawler/pkg/browser"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/models"
)

// PostChecker is the dedup lookup the engine consults for every discovered URL
type PostChecker interface {
	Exists(postURL string) (bool, error)
}

// Selector chains for the profile grid and the post detail page.
var (
	postGridMarker = browser.SelectorChain{
		`article`,
		`main[role="main"]`,
	}

	postAnchors = browser.SelectorChain{
		`article a[href*="/p/"]`,
		`main a[href*="/p/"]`,
	}

	postImage = browser.SelectorChain{
		`article img`,
	}

	postCaption = browser.SelectorChain{
		`div[data-testid="post-caption"] span`,
		`article h1`,
	}

	postTime = browser.SelectorChain{
		`article time`,
		`time`,
	}

	captionOverlayButtons = browser.SelectorChain{
		`article div[role="button"]`,
		`article button`,
	}
)

// expandPhrases is the "show more" vocabulary for truncated captions.
var expandPhrases = []string{
	"더 보기",
	"더보기",
	"more",
	"More",
}

const maxOverlayCandidates = 8

// \w in the source tokenizer is unicode-aware; hashtags and mentions here are
// mostly Korean.
var (
	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
)

// Engine discovers which recent posts on a profile page are not yet captured
// and extracts their fields.
type Engine struct {
	driver       browser.Driver
	store        PostChecker
	maxPosts     int
	gridTimeout  time.Duration
	pageLoadWait time.Duration
	log          logger.Logger
}

// NewEngine creates a discovery engine
func NewEngine(driver browser.Driver, store PostChecker, maxPosts int, gridTimeout, pageLoadWait time.Duration) *Engine {
	return &Engine{
		driver:       driver,
		store:        store,
		maxPosts:     maxPosts,
		gridTimeout:  gridTimeout,
		pageLoadWait: pageLoadWait,
		log:          logger.GetLogger(),
	}
}

// DiscoverNewPosts scans the profile page the driver is currently on and
// returns the new posts in discovery order. The engine navigates away to each
// post detail page and back to profileURL between candidates. An empty result
// is a valid outcome, not an error.
func (e *Engine) DiscoverNewPosts(account, profileURL string) ([]models.Post, error) {
	log := e.log.WithField("account", account)

	// Bounded wait for the grid; a miss degrades to whatever is rendered.
	ok, err := e.driver.WaitUntilPresent(postGridMarker[0], e.gridTimeout)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Warn("Post grid did not appear before timeout, proceeding with rendered content")
	}

	// One scroll to trigger lazy rendering; not retried.
	if err := e.driver.ScrollToBottom(); err != nil {
		log.WithError(err).Warn("Scroll failed, proceeding without it")
	}
	time.Sleep(e.pageLoadWait)

	urls, err := e.collectPostURLs(profileURL)
	if err != nil {
		return nil, err
	}

	candidates := e.filterKnown(urls, log)

	log.InfoWithFields("Post discovery finished", map[string]interface{}{
		"found":      len(urls),
		"candidates": len(candidates),
	})

	var posts []models.Post
	for _, postURL := range candidates {
		post, err := e.extractPostDetails(account, postURL)
		if err != nil {
			// The post stays unknown and will be retried next sweep.
			log.WithError(err).WithField("post_url", postURL).Warn("Post extraction failed, skipping")
		} else {
			post.OrdinalInScan = len(posts) + 1
			posts = append(posts, *post)
		}

		// Back to the profile before the next candidate.
		if err := e.driver.Navigate(profileURL); err != nil {
			log.WithError(err).Warn("Failed to return to profile page")
		}
		time.Sleep(e.pageLoadWait)
	}

	return posts, nil
}

// collectPostURLs gathers post detail links from the current page, in page
// order, truncated to the configured maximum.
func (e *Engine) collectPostURLs(profileURL string) ([]string, error) {
	anchors, err := postAnchors.FindAll(e.driver)
	if err != nil {
		return nil, err
	}

	base, baseErr := url.Parse(profileURL)

	var urls []string
	seen := make(map[string]bool)
	for _, el := range anchors {
		if len(urls) >= e.maxPosts {
			break
		}
		href, present, err := e.driver.Attribute(el, "href")
		if err != nil || !present || href == "" {
			continue
		}
		if baseErr == nil {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		if seen[href] {
			continue
		}
		seen[href] = true
		urls = append(urls, href)
	}

	return urls, nil
}

// filterKnown drops URLs already persisted. A failed lookup keeps the URL as
// a candidate: re-extracting an already-saved post is recoverable, silently
// losing one is not.
func (e *Engine) filterKnown(urls []string, log logger.Logger) []string {
	var candidates []string
	for _, postURL := range urls {
		known, err := e.store.Exists(postURL)
		if err != nil {
			log.WithError(err).WithField("post_url", postURL).Warn("Dedup lookup failed, keeping as candidate")
			candidates = append(candidates, postURL)
			continue
		}
		if known {
			log.WithField("post_url", postURL).Debug("Post already captured, skipping")
			continue
		}
		candidates = append(candidates, postURL)
	}
	return candidates
}

// extractPostDetails loads one post detail page and pulls its fields. Missing
// optional fields are recorded as absent, not as errors.
func (e *Engine) extractPostDetails(account, postURL string) (*models.Post, error) {
	if err := e.driver.Navigate(postURL); err != nil {
		return nil, err
	}
	time.Sleep(e.pageLoadWait)

	e.expandCaption()

	post := &models.Post{
		Account:     account,
		PostURL:     postURL,
		Hashtags:    []string{},
		Mentions:    []string{},
		ExtractedAt: time.Now(),
	}

	if img, err := postImage.FindFirst(e.driver); err == nil && img != nil {
		if src, present, err := e.driver.Attribute(img, "src"); err == nil && present {
			post.ImageURL = src
		}
	}

	if captionEl, err := postCaption.FindFirst(e.driver); err == nil && captionEl != nil {
		if caption, err := e.driver.Text(captionEl); err == nil {
			post.Caption = caption
			post.Hashtags = hashtagPattern.FindAllString(caption, -1)
			post.Mentions = mentionPattern.FindAllString(caption, -1)
			if post.Hashtags == nil {
				post.Hashtags = []string{}
			}
			if post.Mentions == nil {
				post.Mentions = []string{}
			}
		}
	}

	if timeEl, err := postTime.FindFirst(e.driver); err == nil && timeEl != nil {
		// The machine-readable attribute, not the relative display text.
		if postedAt, present, err := e.driver.Attribute(timeEl, "datetime"); err == nil && present {
			post.PostedAt = postedAt
		}
	}

	return post, nil
}

// expandCaption clicks a "show more" control when one is present, using the
// same bounded phrase scan as the post-login dialog dismissal. Best-effort.
func (e *Engine) expandCaption() {
	candidates, err := captionOverlayButtons.FindAll(e.driver)
	if err != nil {
		return
	}
	if len(candidates) > maxOverlayCandidates {
		candidates = candidates[:maxOverlayCandidates]
	}

	for _, el := range candidates {
		text, err := e.driver.Text(el)
		if err != nil {
			continue
		}
		for _, phrase := range expandPhrases {
			if text == phrase {
				_ = e.driver.Click(el)
				return
			}
		}
	}
}
