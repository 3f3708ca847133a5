// Package resolver turns an episode entry into a download descriptor by following
// its redirect page and waiting for the link the page eventually reveals.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/epget-cli/epget/apperrors"
	"github.com/epget-cli/epget/browser"
	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/key"
	"github.com/epget-cli/epget/log"
	"github.com/epget-cli/epget/progress"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/spf13/viper"
)

var errNotReady = errors.New("download link not ready")

// Options configures a Resolver.
type Options struct {
	// QualityXPath locates the quality group inside an episode entry.
	QualityXPath string
	// RedirectXPath locates the redirect link inside the quality group.
	RedirectXPath string
	// DownloadLabel is the text of the direct download link.
	DownloadLabel string

	// MarkerXPath matches once a browser-driven download has completed.
	MarkerXPath string
	// DoneXPath, TotalXPath and PercentXPath locate the progress indicators of a browser-driven download.
	DoneXPath    string
	TotalXPath   string
	PercentXPath string

	// Timeout bounds the wait for a link. Past it the link is considered expired.
	Timeout time.Duration
	// PollInterval is the delay between two looks at the redirect page.
	PollInterval time.Duration

	// TargetDir is where browser-driven downloads land.
	TargetDir string
}

// Resolution is a resolved descriptor together with the browsing context that produced it.
// The caller owns Context and must close it.
type Resolution struct {
	Descriptor episode.Descriptor
	Context    browser.Page
}

// Resolver follows redirect pages.
type Resolver struct {
	opts Options
}

// New returns a Resolver.
func New(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// FromConfig returns a Resolver using configured selectors and timings.
func FromConfig(targetDir string) *Resolver {
	return New(Options{
		QualityXPath:  viper.GetString(key.CatalogQualityXPath),
		RedirectXPath: viper.GetString(key.CatalogRedirectXPath),
		DownloadLabel: viper.GetString(key.ResolverDownloadLabel),
		MarkerXPath:   viper.GetString(key.ResolverPushMarkerXPath),
		DoneXPath:     viper.GetString(key.ResolverPushDoneXPath),
		TotalXPath:    viper.GetString(key.ResolverPushTotalXPath),
		PercentXPath:  viper.GetString(key.ResolverPushPercentXPath),
		Timeout:       viper.GetDuration(key.ResolverTimeout),
		PollInterval:  viper.GetDuration(key.ResolverPollInterval),
		TargetDir:     targetDir,
	})
}

// DownloadXPath matches the direct download link carrying the given label.
func DownloadXPath(label string) string {
	return fmt.Sprintf(`//a[text() = %s and string(@href)]`, xpathLiteral(label))
}

// Resolve opens the redirect of h in a new browsing context and waits there for a download link.
//
// When no link shows up within the timeout the new context is closed and an
// *apperrors.ExpiredError is returned. The context is closed on any other failure too.
func (r *Resolver) Resolve(ctx context.Context, primary browser.Page, h episode.Handle, sink progress.Sink) (*Resolution, error) {
	group, err := h.Ref.Find(r.opts.QualityXPath)
	if err != nil {
		return nil, r.structural(err, "quality options of "+h.String(), r.opts.QualityXPath)
	}

	redirect, err := group.Find(r.opts.RedirectXPath)
	if err != nil {
		return nil, r.structural(err, "redirect link of "+h.String(), r.opts.RedirectXPath)
	}

	secondary, err := browser.OpenInNewContext(ctx, primary, redirect, r.opts.Timeout)
	switch {
	case errors.Is(err, browser.ErrNotOpened):
		log.With(log.Fields{"episode": h.Number}).Info("redirect page never opened")
		return nil, apperrors.NewExpiredError(h.Number, r.opts.Timeout)
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		return nil, fmt.Errorf("open redirect of %s: %w", h, err)
	}

	log.With(log.Fields{"episode": h.Number, "url": secondary.URL()}).Debug("waiting for download link")

	var (
		fatal    error
		attempts int
	)

	policy := retrypolicy.NewBuilder[episode.Descriptor]().
		HandleErrors(errNotReady).
		WithDelay(r.opts.PollInterval).
		WithMaxRetries(-1).
		WithMaxDuration(r.opts.Timeout).
		Build()

	descriptor, err := failsafe.With[episode.Descriptor](policy).
		WithContext(ctx).
		Get(func() (episode.Descriptor, error) {
			attempts++
			d, err := r.look(secondary, sink)
			if err != nil && !errors.Is(err, errNotReady) {
				fatal = err
			}
			return d, err
		})

	if err == nil {
		log.With(log.Fields{"episode": h.Number, "kind": descriptor.Kind, "attempts": attempts}).Info("download link resolved")
		return &Resolution{Descriptor: descriptor, Context: secondary}, nil
	}

	if closeErr := secondary.Close(); closeErr != nil {
		log.Warnf("close redirect page of %s: %s", h, closeErr)
	}

	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case fatal != nil:
		return nil, fatal
	default:
		log.With(log.Fields{"episode": h.Number, "attempts": attempts}).Info("download link expired")
		return nil, apperrors.NewExpiredError(h.Number, r.opts.Timeout)
	}
}

// look checks at the redirect page once.
func (r *Resolver) look(page browser.Page, sink progress.Sink) (episode.Descriptor, error) {
	if d, err := r.pull(page); !errors.Is(err, errNotReady) {
		return d, err
	}

	if d, err := r.push(page); !errors.Is(err, errNotReady) {
		return d, err
	}

	if state, ok := r.indicators(page); ok {
		sink.Update(state)
	}

	return episode.Descriptor{}, errNotReady
}

func (r *Resolver) pull(page browser.Page) (episode.Descriptor, error) {
	anchor, err := find(page, DownloadXPath(r.opts.DownloadLabel))
	if err != nil {
		return episode.Descriptor{}, err
	}

	href, ok, err := anchor.Attribute("href")
	if err != nil {
		return episode.Descriptor{}, notReady(err)
	}
	if !ok || strings.TrimSpace(href) == "" {
		return episode.Descriptor{}, errNotReady
	}

	link, err := absolute(page.URL(), href)
	if err != nil {
		return episode.Descriptor{}, err
	}

	return episode.NewPull(link)
}

func (r *Resolver) push(page browser.Page) (episode.Descriptor, error) {
	if r.opts.MarkerXPath == "" {
		return episode.Descriptor{}, errNotReady
	}

	marker, err := find(page, r.opts.MarkerXPath)
	if err != nil {
		return episode.Descriptor{}, err
	}

	name, err := markerName(marker)
	if err != nil {
		return episode.Descriptor{}, notReady(err)
	}
	if name == "" {
		return episode.Descriptor{}, errNotReady
	}

	return episode.NewPush(r.opts.TargetDir, name)
}

// markerName prefers the download attribute, then the last segment of the link, then the text.
func markerName(marker browser.Element) (string, error) {
	if name, ok, err := marker.Attribute("download"); err != nil {
		return "", err
	} else if ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name), nil
	}

	if href, ok, err := marker.Attribute("href"); err != nil {
		return "", err
	} else if ok && !strings.HasPrefix(href, "blob:") && !strings.HasPrefix(href, "data:") {
		if name, err := episode.NameFromURL(href); err == nil {
			return name, nil
		}
	}

	text, err := marker.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// indicators reads the progress of a browser-driven download, if the page shows one.
func (r *Resolver) indicators(page browser.Page) (progress.State, bool) {
	done, ok := r.size(page, r.opts.DoneXPath)
	if !ok {
		return progress.State{}, false
	}

	if total, ok := r.size(page, r.opts.TotalXPath); ok {
		return progress.NewState(int64(done), int64(total)), true
	}

	if pct, ok := r.percentage(page); ok && pct > 0 {
		return progress.NewState(int64(done), int64(float64(done)*100/pct)), true
	}

	return progress.NewState(int64(done), 0), true
}

func (r *Resolver) size(page browser.Page, xpath string) (uint64, bool) {
	text, ok := r.text(page, xpath)
	if !ok {
		return 0, false
	}

	n, err := humanize.ParseBytes(text)
	if err != nil {
		log.Debugf("unreadable size indicator %q: %s", text, err)
		return 0, false
	}
	return n, true
}

func (r *Resolver) percentage(page browser.Page) (float64, bool) {
	text, ok := r.text(page, r.opts.PercentXPath)
	if !ok {
		return 0, false
	}

	pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(text, "%")), 64)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func (r *Resolver) text(page browser.Page, xpath string) (string, bool) {
	if xpath == "" {
		return "", false
	}

	el, err := page.Find(xpath)
	if err != nil {
		return "", false
	}

	text, err := el.Text()
	if err != nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	return strings.TrimSpace(text), true
}

func (r *Resolver) structural(err error, what, selector string) error {
	if errors.Is(err, browser.ErrNotFound) {
		return apperrors.NewStructuralError(what, selector)
	}
	return fmt.Errorf("look up %s: %w", what, err)
}

// find maps a missing element to errNotReady.
func find(page browser.Page, xpath string) (browser.Element, error) {
	el, err := page.Find(xpath)
	if err != nil {
		return nil, notReady(err)
	}
	return el, nil
}

// notReady treats lookup failures as a page that is still changing.
// Elements vanish while the page re-renders, so any lookup error counts.
func notReady(err error) error {
	if !errors.Is(err, browser.ErrNotFound) {
		log.Debugf("redirect page lookup: %s", err)
	}
	return errNotReady
}

func absolute(base, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse download link %q: %w", href, err)
	}

	if ref.IsAbs() || base == "" {
		return ref.String(), nil
	}

	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse redirect page address %q: %w", base, err)
	}
	return b.ResolveReference(ref).String(), nil
}

// xpathLiteral quotes s for use in an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	parts := strings.Split(s, `"`)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(quoted, `, '"', `) + ")"
}
