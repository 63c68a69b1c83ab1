package browser

import (
	"time"

	"igcrawler/pkg/errors"
)

// FakeDriver is an in-memory Driver for tests. Pages are keyed by URL and
// hold their matchable elements per selector, in page order.
type FakeDriver struct {
	Pages map[string]*FakePage

	// Recorded interactions, in call order.
	Navigations []string
	Clicked     []*FakeElement
	Filled      map[*FakeElement][]string
	Scrolls     int

	// Fault injection.
	NavigateErr map[string]error
	FindErr     error

	currentURL string
	current    *FakePage
}

// FakePage holds the elements a fake page exposes, keyed by selector.
type FakePage struct {
	Elements map[string][]*FakeElement
}

// FakeElement is a scripted page element.
type FakeElement struct {
	TextContent string
	Attrs       map[string]string
	selector    string
}

func (e *FakeElement) Selector() string { return e.selector }

// NewFakeDriver creates an empty fake driver
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{
		Pages:       make(map[string]*FakePage),
		NavigateErr: make(map[string]error),
		Filled:      make(map[*FakeElement][]string),
	}
}

// AddPage registers a page under url
func (d *FakeDriver) AddPage(url string) *FakePage {
	page := &FakePage{Elements: make(map[string][]*FakeElement)}
	d.Pages[url] = page
	return page
}

// Add appends an element matchable by selector
func (p *FakePage) Add(selector, text string, attrs map[string]string) *FakeElement {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	el := &FakeElement{TextContent: text, Attrs: attrs, selector: selector}
	p.Elements[selector] = append(p.Elements[selector], el)
	return el
}

func (d *FakeDriver) Navigate(url string) error {
	d.Navigations = append(d.Navigations, url)
	if err, ok := d.NavigateErr[url]; ok && err != nil {
		return err
	}
	page, ok := d.Pages[url]
	if !ok {
		return errors.NewDriverError("no such page: "+url, nil)
	}
	d.currentURL = url
	d.current = page
	return nil
}

// CurrentURL returns the URL of the current page
func (d *FakeDriver) CurrentURL() string { return d.currentURL }

func (d *FakeDriver) FindFirst(selector string) (Element, error) {
	if d.FindErr != nil {
		return nil, d.FindErr
	}
	if d.current == nil {
		return nil, errors.NewDriverError("no page loaded", nil)
	}
	els := d.current.Elements[selector]
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

func (d *FakeDriver) FindAll(selector string) ([]Element, error) {
	if d.FindErr != nil {
		return nil, d.FindErr
	}
	if d.current == nil {
		return nil, errors.NewDriverError("no page loaded", nil)
	}
	var out []Element
	for _, el := range d.current.Elements[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (d *FakeDriver) Text(el Element) (string, error) {
	fe, ok := el.(*FakeElement)
	if !ok {
		return "", errors.NewDriverError("element does not belong to this driver", nil)
	}
	return fe.TextContent, nil
}

func (d *FakeDriver) Attribute(el Element, name string) (string, bool, error) {
	fe, ok := el.(*FakeElement)
	if !ok {
		return "", false, errors.NewDriverError("element does not belong to this driver", nil)
	}
	val, exists := fe.Attrs[name]
	return val, exists, nil
}

func (d *FakeDriver) Click(el Element) error {
	fe, ok := el.(*FakeElement)
	if !ok {
		return errors.NewDriverError("element does not belong to this driver", nil)
	}
	d.Clicked = append(d.Clicked, fe)
	return nil
}

func (d *FakeDriver) Fill(el Element, value string) error {
	fe, ok := el.(*FakeElement)
	if !ok {
		return errors.NewDriverError("element does not belong to this driver", nil)
	}
	d.Filled[fe] = append(d.Filled[fe], value)
	return nil
}

func (d *FakeDriver) ScrollToBottom() error {
	d.Scrolls++
	return nil
}

func (d *FakeDriver) WaitUntilPresent(selector string, timeout time.Duration) (bool, error) {
	el, err := d.FindFirst(selector)
	if err != nil {
		return false, err
	}
	return el != nil, nil
}
