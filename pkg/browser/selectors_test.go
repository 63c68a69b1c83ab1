package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcrawler/pkg/errors"
)

func TestSelectorChainFindFirst(t *testing.T) {
	driver := NewFakeDriver()
	page := driver.AddPage("https://example.test")
	page.Add("div.new", "new layout", nil)
	require.NoError(t, driver.Navigate("https://example.test"))

	chain := SelectorChain{"div.old", "div.new"}

	el, err := chain.FindFirst(driver)
	require.NoError(t, err)
	require.NotNil(t, el)

	text, err := driver.Text(el)
	require.NoError(t, err)
	assert.Equal(t, "new layout", text)
}

func TestSelectorChainOrderWins(t *testing.T) {
	driver := NewFakeDriver()
	page := driver.AddPage("https://example.test")
	page.Add("div.old", "old layout", nil)
	page.Add("div.new", "new layout", nil)
	require.NoError(t, driver.Navigate("https://example.test"))

	chain := SelectorChain{"div.old", "div.new"}

	el, err := chain.FindFirst(driver)
	require.NoError(t, err)
	require.NotNil(t, el)

	text, err := driver.Text(el)
	require.NoError(t, err)
	assert.Equal(t, "old layout", text, "earlier selectors take precedence")
}

func TestSelectorChainNoMatch(t *testing.T) {
	driver := NewFakeDriver()
	driver.AddPage("https://example.test")
	require.NoError(t, driver.Navigate("https://example.test"))

	chain := SelectorChain{"div.a", "div.b"}

	el, err := chain.FindFirst(driver)
	require.NoError(t, err)
	assert.Nil(t, el, "absence is not an error")

	found, err := chain.Matches(driver)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSelectorChainFindAll(t *testing.T) {
	driver := NewFakeDriver()
	page := driver.AddPage("https://example.test")
	page.Add("a.post", "one", nil)
	page.Add("a.post", "two", nil)
	page.Add("a.fallback", "three", nil)
	require.NoError(t, driver.Navigate("https://example.test"))

	chain := SelectorChain{"a.post", "a.fallback"}

	els, err := chain.FindAll(driver)
	require.NoError(t, err)
	assert.Len(t, els, 2, "the first matching selector's results win, not the union")
}

func TestSelectorChainPropagatesDriverError(t *testing.T) {
	driver := NewFakeDriver()
	driver.AddPage("https://example.test")
	require.NoError(t, driver.Navigate("https://example.test"))
	driver.FindErr = errors.NewDriverError("session gone", nil)

	chain := SelectorChain{"div.a"}

	_, err := chain.FindFirst(driver)
	assert.Error(t, err)

	_, err = chain.Matches(driver)
	assert.Error(t, err)
}
