// Package browser is the narrow automation surface the downloader needs from a real browser:
// navigation, structural queries, element scripts and browsing-context bookkeeping.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Find when nothing matches. Lookups never wait.
	ErrNotFound = errors.New("element not found")

	// ErrNotOpened is returned by OpenInNewContext when no new context shows up in time.
	ErrNotOpened = errors.New("no new browsing context was opened")
)

// Element is a node of a rendered page.
type Element interface {
	// Text returns the visible text of the element.
	Text() (string, error)

	// Attribute returns the value of an attribute and whether it is present.
	Attribute(name string) (string, bool, error)

	// Find returns the first descendant matching the XPath expression, relative to the element.
	Find(xpath string) (Element, error)

	// Eval runs a JavaScript function with the element bound to this, e.g. `() => this.click()`.
	Eval(js string) error
}

// Page is one browsing context (a tab).
type Page interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// URL returns the address currently displayed.
	URL() string

	// HTML returns the serialized document.
	HTML() (string, error)

	// FindAll returns every element matching a CSS selector, in document order.
	FindAll(css string) ([]Element, error)

	// Find returns the first element matching an XPath expression.
	Find(xpath string) (Element, error)

	// WaitOpen must be called before the action that opens a new context;
	// the returned function blocks until that context exists or ctx is done.
	// Cancelling ctx releases a waiter that is never called.
	WaitOpen(ctx context.Context) func() (Page, error)

	// Close closes the browsing context.
	Close() error
}

// Session is a running browser with a primary browsing context.
type Session interface {
	// Primary returns the context the catalog is browsed in.
	Primary() Page

	// Pages lists every open browsing context.
	Pages() ([]Page, error)

	// Close shuts the browser down.
	Close() error
}

// Scripts used to open a link in a new browsing context.
const (
	ScriptTargetBlank = `() => { this.target = "_blank" }`
	ScriptClick       = `() => this.click()`
)

// OpenInNewContext forces el to open in a new browsing context, clicks it and returns that context.
// It gives up with ErrNotOpened when nothing opens within timeout.
func OpenInNewContext(ctx context.Context, from Page, el Element, timeout time.Duration) (Page, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := from.WaitOpen(waitCtx)

	if err := el.Eval(ScriptTargetBlank); err != nil {
		return nil, err
	}

	if err := el.Eval(ScriptClick); err != nil {
		return nil, err
	}

	page, err := wait()
	if err != nil {
		if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrNotOpened
		}
		return nil, err
	}
	return page, nil
}

// CloseSecondary closes every context except the primary one and reports how many were closed.
func CloseSecondary(s Session) (int, error) {
	pages, err := s.Pages()
	if err != nil {
		return 0, err
	}

	var closed int
	primary := s.Primary()
	for _, p := range pages {
		if SamePage(p, primary) {
			continue
		}
		if err := p.Close(); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// Identified is implemented by pages that carry a stable identity across lookups.
type Identified interface {
	ID() string
}

// SamePage reports whether a and b refer to the same browsing context.
func SamePage(a, b Page) bool {
	ia, okA := a.(Identified)
	ib, okB := b.(Identified)
	if okA && okB {
		return ia.ID() == ib.ID()
	}
	return a == b
}
