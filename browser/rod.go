package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/epget-cli/epget/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/samber/lo"
)

// Options configures Launch.
type Options struct {
	// Bin is the browser executable. Empty lets the launcher look one up.
	Bin string
	// Headless hides the browser window.
	Headless bool
	// Trace logs every automation step.
	Trace bool
	// DownloadDir is where the browser itself saves files, must be absolute.
	DownloadDir string
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	primary  *rodPage
}

// Launch starts the browser and opens the primary browsing context.
func Launch(ctx context.Context, opts Options) (Session, error) {
	l := launcher.New().Context(ctx).Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser %s: %w", opts.Bin, err)
	}

	b := rod.New().ControlURL(u).Context(ctx).Trace(opts.Trace)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	if opts.DownloadDir != "" {
		err := proto.BrowserSetDownloadBehavior{
			Behavior:      proto.BrowserSetDownloadBehaviorBehaviorAllow,
			DownloadPath:  opts.DownloadDir,
			EventsEnabled: true,
		}.Call(b)
		if err != nil {
			_ = b.Close()
			l.Kill()
			return nil, fmt.Errorf("set download directory: %w", err)
		}
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("open primary page: %w", err)
	}

	log.Infof("browser started at %s", u)
	return &rodSession{launcher: l, browser: b, primary: &rodPage{page: page}}, nil
}

func (s *rodSession) Primary() Page {
	return s.primary
}

func (s *rodSession) Pages() ([]Page, error) {
	pages, err := s.browser.Pages()
	if err != nil {
		return nil, err
	}

	return lo.Map(pages, func(p *rod.Page, _ int) Page {
		if p.TargetID == s.primary.page.TargetID {
			return s.primary
		}
		return &rodPage{page: p}
	}), nil
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) ID() string {
	return string(p.page.TargetID)
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return page.WaitLoad()
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) FindAll(css string) ([]Element, error) {
	elements, err := p.page.Elements(css)
	if err != nil {
		return nil, err
	}

	return lo.Map(elements, func(el *rod.Element, _ int) Element {
		return &rodElement{el: el}
	}), nil
}

func (p *rodPage) Find(xpath string) (Element, error) {
	return wrapHas(p.page.HasX(xpath))
}

func (p *rodPage) WaitOpen(ctx context.Context) func() (Page, error) {
	wait := p.page.Context(ctx).WaitOpen()
	return func() (Page, error) {
		page, err := wait()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("wait for new page: %w", ctxErr)
		}
		if err != nil {
			return nil, fmt.Errorf("wait for new page: %w", err)
		}
		// detach from the wait deadline
		return &rodPage{page: page.Context(p.page.GetContext())}, nil
	}
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	value, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

func (e *rodElement) Find(xpath string) (Element, error) {
	return wrapHas(e.el.HasX(xpath))
}

func (e *rodElement) Eval(js string) error {
	_, err := e.el.Eval(js)
	return err
}

func wrapHas(has bool, el *rod.Element, err error) (Element, error) {
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !has {
		return nil, ErrNotFound
	}
	return &rodElement{el: el}, nil
}
