// Package browser defines the driver contract the crawler talks to pages
// through, and ships a static HTTP implementation of it.
//
// The Driver interface models the small slice of browser behavior the crawler
// needs: navigation, element lookup, attribute and text reads, clicks, form
// fills and scrolling. Element absence is reported as a nil element, not an
// error; errors are reserved for the driver itself failing (network, parse,
// lost session).
//
// SelectorChain layers ordered fallback probing on top of a Driver: page
// layouts drift, and adding a fallback selector is a data change rather than
// a code change.
//
// Two implementations are provided:
//   - StaticDriver fetches pages over HTTP and parses them with goquery. It
//     sees pages as the server rendered them, so Click, Fill and
//     ScrollToBottom are no-ops.
//   - FakeDriver is a scripted in-memory driver for tests.
//
// Usage:
//
//	driver := browser.NewStaticDriver(userAgent, 10*time.Second)
//	if err := driver.Navigate("https://www.instagram.com/natgeo/"); err != nil {
//	    return err
//	}
//
//	chain := browser.SelectorChain{`article a[href*="/p/"]`, `main a[href*="/p/"]`}
//	anchors, err := chain.FindAll(driver)
package browser
