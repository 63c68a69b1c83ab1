package browser

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"igcrawler/pkg/errors"
	"igcrawler/pkg/logger"
)

// StaticDriver is a Driver backed by plain HTTP fetches and goquery parsing.
// It sees pages as the server rendered them: Click and ScrollToBottom are
// no-ops and WaitUntilPresent resolves against the already-parsed document.
// It stands in for a headless-browser driver in tests and simple deployments.
type StaticDriver struct {
	client     *http.Client
	userAgent  string
	currentURL string
	doc        *goquery.Document
	log        logger.Logger
}

// staticElement wraps a goquery selection located on the current document.
type staticElement struct {
	sel      *goquery.Selection
	selector string
}

func (e *staticElement) Selector() string { return e.selector }

// NewStaticDriver creates a driver that fetches pages over HTTP
func NewStaticDriver(userAgent string, timeout time.Duration) *StaticDriver {
	return &StaticDriver{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       logger.GetLogger(),
	}
}

// Navigate fetches url and parses it as the current page
func (d *StaticDriver) Navigate(url string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return errors.NewDriverError(fmt.Sprintf("building request for %s", url), err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return errors.NewDriverError(fmt.Sprintf("fetching %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewDriverError(fmt.Sprintf("fetching %s: status %d", url, resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return errors.NewParsingError(fmt.Sprintf("parsing %s", url), err)
	}

	d.doc = doc
	d.currentURL = url

	d.log.DebugWithFields("Page loaded", map[string]interface{}{
		"url": url,
	})
	return nil
}

// CurrentURL returns the URL of the current page, if any
func (d *StaticDriver) CurrentURL() string {
	return d.currentURL
}

func (d *StaticDriver) FindFirst(selector string) (Element, error) {
	if d.doc == nil {
		return nil, errors.NewDriverError("no page loaded", nil)
	}
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, nil
	}
	return &staticElement{sel: sel, selector: selector}, nil
}

func (d *StaticDriver) FindAll(selector string) ([]Element, error) {
	if d.doc == nil {
		return nil, errors.NewDriverError("no page loaded", nil)
	}
	var els []Element
	d.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		els = append(els, &staticElement{sel: s, selector: selector})
	})
	return els, nil
}

func (d *StaticDriver) Text(el Element) (string, error) {
	se, ok := el.(*staticElement)
	if !ok || se.sel == nil {
		return "", errors.NewDriverError("element does not belong to this driver", nil)
	}
	return strings.TrimSpace(se.sel.Text()), nil
}

func (d *StaticDriver) Attribute(el Element, name string) (string, bool, error) {
	se, ok := el.(*staticElement)
	if !ok || se.sel == nil {
		return "", false, errors.NewDriverError("element does not belong to this driver", nil)
	}
	val, exists := se.sel.Attr(name)
	return val, exists, nil
}

// Click is a no-op: a static document has nothing to activate.
func (d *StaticDriver) Click(el Element) error {
	if _, ok := el.(*staticElement); !ok {
		return errors.NewDriverError("element does not belong to this driver", nil)
	}
	return nil
}

// Fill is a no-op: a static document carries no form state.
func (d *StaticDriver) Fill(el Element, value string) error {
	if _, ok := el.(*staticElement); !ok {
		return errors.NewDriverError("element does not belong to this driver", nil)
	}
	return nil
}

// ScrollToBottom is a no-op: the fetched document is already complete.
func (d *StaticDriver) ScrollToBottom() error {
	return nil
}

// WaitUntilPresent checks the parsed document; the content cannot change, so
// a miss is reported as a timeout without waiting it out.
func (d *StaticDriver) WaitUntilPresent(selector string, timeout time.Duration) (bool, error) {
	el, err := d.FindFirst(selector)
	if err != nil {
		return false, err
	}
	return el != nil, nil
}
