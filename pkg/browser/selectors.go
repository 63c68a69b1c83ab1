package browser

// SelectorChain is an ordered list of selectors tried in sequence until one
// yields a result. Page layouts drift; adding a fallback is a data change,
// not a control-flow change.
type SelectorChain []string

// FindFirst returns the first element produced by the first selector in the
// chain that matches anything, or nil if none do.
func (c SelectorChain) FindFirst(d Driver) (Element, error) {
	for _, selector := range c {
		el, err := d.FindFirst(selector)
		if err != nil {
			return nil, err
		}
		if el != nil {
			return el, nil
		}
	}
	return nil, nil
}

// FindAll returns the result of the first selector in the chain that matches
// at least one element.
func (c SelectorChain) FindAll(d Driver) ([]Element, error) {
	for _, selector := range c {
		els, err := d.FindAll(selector)
		if err != nil {
			return nil, err
		}
		if len(els) > 0 {
			return els, nil
		}
	}
	return nil, nil
}

// Matches reports whether any selector in the chain matches on the current page.
func (c SelectorChain) Matches(d Driver) (bool, error) {
	el, err := c.FindFirst(d)
	if err != nil {
		return false, err
	}
	return el != nil, nil
}
