package browser

import "time"

// Element is an opaque reference to a located page element. A value is only
// meaningful to the Driver that produced it.
type Element interface {
	// Selector returns the selector path that located this element, for logging.
	Selector() string
}

// Driver is the contract the crawl engine consumes for all page access.
//
// Element lookups report absence by returning a nil Element (or an empty
// slice) with a nil error; a non-nil error always means a real driver fault
// such as a failed navigation or a lost session.
type Driver interface {
	// Navigate loads the given URL and makes it the current page.
	Navigate(url string) error

	// FindFirst returns the first element matching selector on the current
	// page, or nil if none matches.
	FindFirst(selector string) (Element, error)

	// FindAll returns all elements matching selector in page order.
	FindAll(selector string) ([]Element, error)

	// Text returns the visible text content of el.
	Text(el Element) (string, error)

	// Attribute returns the named attribute of el. The boolean reports
	// whether the attribute is present at all.
	Attribute(el Element, name string) (string, bool, error)

	// Click activates el. Drivers without interaction support treat this as
	// a no-op.
	Click(el Element) error

	// Fill types value into the form field el. Drivers without interaction
	// support treat this as a no-op.
	Fill(el Element, value string) error

	// ScrollToBottom scrolls the current page to its end to trigger lazy
	// rendering. Best-effort.
	ScrollToBottom() error

	// WaitUntilPresent blocks until selector matches something on the
	// current page or timeout elapses. It returns false on timeout; an
	// error is reserved for driver faults.
	WaitUntilPresent(selector string, timeout time.Duration) (bool, error)
}
