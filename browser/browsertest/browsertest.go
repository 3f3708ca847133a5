// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/epget-cli/epget/browser"
)

// Element is a scripted page node.
type Element struct {
	Label    string
	Attrs    map[string]string
	Children map[string]*Element

	// OnClick runs when a click script is evaluated against the element.
	OnClick func()

	mu      sync.Mutex
	scripts []string
}

// NewElement returns an element with the given text.
func NewElement(label string) *Element {
	return &Element{Label: label, Attrs: map[string]string{}, Children: map[string]*Element{}}
}

// With registers child under xpath and returns the receiver.
func (e *Element) With(xpath string, child *Element) *Element {
	e.Children[xpath] = child
	return e
}

// Attr sets an attribute and returns the receiver.
func (e *Element) Attr(name, value string) *Element {
	e.Attrs[name] = value
	return e
}

// Scripts returns every script evaluated against the element.
func (e *Element) Scripts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.scripts...)
}

func (e *Element) Text() (string, error) {
	return e.Label, nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	v, ok := e.Attrs[name]
	return v, ok, nil
}

func (e *Element) Find(xpath string) (browser.Element, error) {
	child, ok := e.Children[xpath]
	if !ok {
		return nil, browser.ErrNotFound
	}
	return child, nil
}

func (e *Element) Eval(js string) error {
	e.mu.Lock()
	e.scripts = append(e.scripts, js)
	e.mu.Unlock()

	if strings.Contains(js, "click()") && e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

// Page is a scripted browsing context.
type Page struct {
	session *Session
	id      int

	mu      sync.Mutex
	address string
	closed  bool

	// Content is returned by HTML.
	Content string
	// Entries is returned by FindAll for any selector.
	Entries []*Element
	// Lookup answers Find. A nil Lookup finds nothing.
	Lookup func(xpath string) (*Element, bool)
	// OnNavigate runs on every successful navigation, before Navigate returns.
	OnNavigate func(p *Page, url string) error
}

func (p *Page) ID() string {
	return fmt.Sprintf("page-%d", p.id)
}

func (p *Page) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("navigate on a closed page")
	}
	p.address = url
	p.mu.Unlock()

	p.session.recordNavigation(url)
	if p.OnNavigate != nil {
		return p.OnNavigate(p, url)
	}
	return nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.address
}

func (p *Page) HTML() (string, error) {
	return p.Content, nil
}

func (p *Page) FindAll(string) ([]browser.Element, error) {
	out := make([]browser.Element, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e
	}
	return out, nil
}

func (p *Page) Find(xpath string) (browser.Element, error) {
	if p.Lookup == nil {
		return nil, browser.ErrNotFound
	}
	el, ok := p.Lookup(xpath)
	if !ok {
		return nil, browser.ErrNotFound
	}
	return el, nil
}

// WaitOpen blocks until ctx is done when the action opened nothing, as a real browser would.
func (p *Page) WaitOpen(ctx context.Context) func() (browser.Page, error) {
	before := p.session.openedCount()
	return func() (browser.Page, error) {
		if p.session.openedCount() == before {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return p.session.last(), nil
	}
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("page already closed")
	}
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Session is an in-memory browser.
type Session struct {
	mu          sync.Mutex
	pages       []*Page
	navigations []string
	closed      bool
}

// NewSession returns a session with an empty primary page.
func NewSession() *Session {
	s := &Session{}
	s.pages = []*Page{{session: s}}
	return s
}

// PrimaryPage returns the concrete primary page for scripting.
func (s *Session) PrimaryPage() *Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[0]
}

// Open creates a secondary context at address, as a click on a target=_blank link would.
func (s *Session) Open(address string) *Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &Page{session: s, id: len(s.pages), address: address}
	s.pages = append(s.pages, p)
	return p
}

// OpenPages returns the number of contexts that are still open, the primary included.
func (s *Session) OpenPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, p := range s.pages {
		if !p.Closed() {
			n++
		}
	}
	return n
}

// Navigations returns every URL navigated to, in order.
func (s *Session) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) Primary() browser.Page {
	return s.PrimaryPage()
}

func (s *Session) Pages() ([]browser.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []browser.Page
	for _, p := range s.pages {
		if !p.Closed() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Session) recordNavigation(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigations = append(s.navigations, url)
}

func (s *Session) openedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

func (s *Session) last() *Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[len(s.pages)-1]
}
