// Package catalog enumerates the episodes published on a season page.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/epget-cli/epget/apperrors"
	"github.com/epget-cli/epget/browser"
	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/key"
	"github.com/epget-cli/epget/log"
	"github.com/spf13/viper"
)

// Selectors locate the parts of an episode entry.
type Selectors struct {
	// Episode matches one entry, in catalog order.
	Episode string
	// Number matches the episode number inside an entry.
	Number string
	// Quality matches the quality labels inside an entry.
	Quality string
}

// Catalog reads season pages.
type Catalog struct {
	selectors Selectors
}

// New returns a Catalog using the given selectors.
func New(selectors Selectors) *Catalog {
	return &Catalog{selectors: selectors}
}

// FromConfig returns a Catalog using the configured selectors.
func FromConfig() *Catalog {
	return New(Selectors{
		Episode: viper.GetString(key.CatalogEpisodeSelector),
		Number:  viper.GetString(key.CatalogNumberSelector),
		Quality: viper.GetString(key.CatalogQualitySelector),
	})
}

// Enumerate loads url into page and returns one handle per episode entry, in page order.
// Every call returns fresh handles; element references from an earlier call must not be reused.
func (c *Catalog) Enumerate(ctx context.Context, page browser.Page, url string) ([]episode.Handle, error) {
	if err := page.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("open season page %s: %w", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read season page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse season page: %w", err)
	}

	entries := doc.Find(c.selectors.Episode)

	refs, err := page.FindAll(c.selectors.Episode)
	if err != nil {
		return nil, fmt.Errorf("collect episode entries: %w", err)
	}

	if len(refs) != entries.Length() {
		return nil, apperrors.NewStructuralError(
			fmt.Sprintf("live references for %d episode entries (got %d)", entries.Length(), len(refs)),
			c.selectors.Episode,
		)
	}

	handles := make([]episode.Handle, 0, len(refs))
	var structural error

	entries.EachWithBreak(func(i int, entry *goquery.Selection) bool {
		raw := strings.TrimSpace(entry.Find(c.selectors.Number).First().Text())
		if raw == "" {
			structural = apperrors.NewStructuralError(fmt.Sprintf("number of episode entry %d", i+1), c.selectors.Number)
			return false
		}

		handles = append(handles, episode.Handle{
			Ordinal: i,
			Number:  episode.NormalizeNumber(raw),
			Raw:     raw,
			Quality: strings.TrimSpace(entry.Find(c.selectors.Quality).First().Text()),
			Ref:     refs[i],
		})
		return true
	})

	if structural != nil {
		return nil, structural
	}

	log.Infof("found %d episodes at %s", len(handles), url)
	return handles, nil
}
