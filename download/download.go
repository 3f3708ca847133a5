// Package download drives a season download: enumerate, skip what is present,
// resolve, transfer, and start over from the catalog when a link expires.
package download

import (
	"context"
	"fmt"
	"io"

	"github.com/epget-cli/epget/apperrors"
	"github.com/epget-cli/epget/browser"
	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/log"
	"github.com/epget-cli/epget/progress"
	"github.com/epget-cli/epget/resolver"
	"github.com/epget-cli/epget/transfer"
	"github.com/epget-cli/epget/util"
)

// Catalog lists the episodes of a season page.
type Catalog interface {
	Enumerate(ctx context.Context, page browser.Page, url string) ([]episode.Handle, error)
}

// Inventory tells whether an episode is already on disk.
type Inventory interface {
	IsSatisfied(number string) (bool, error)
}

// Resolver turns an episode into a download descriptor.
type Resolver interface {
	Resolve(ctx context.Context, primary browser.Page, h episode.Handle, sink progress.Sink) (*resolver.Resolution, error)
}

// Options wires an Orchestrator.
type Options struct {
	Session   browser.Session
	Catalog   Catalog
	Inventory Inventory
	Resolver  Resolver
	Transfer  transfer.Transfer

	SeasonURL string
	TargetDir string

	// Out receives the operator trace.
	Out io.Writer
	// NewSink returns the progress sink of an episode. Nil discards progress.
	NewSink func(h episode.Handle) progress.Sink
}

// Orchestrator downloads every missing episode of a season, one at a time.
type Orchestrator struct {
	opts Options

	cursor   int
	passes   int
	restarts int
}

// New returns an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Orchestrator{opts: opts}
}

// Cursor returns how many catalog entries have been processed.
func (o *Orchestrator) Cursor() int {
	return o.cursor
}

// Restarts returns how many times the catalog was reloaded after an expired link.
func (o *Orchestrator) Restarts() int {
	return o.restarts
}

// Run processes the catalog until every entry was skipped or downloaded.
// Expired links restart from the catalog without losing progress; any other error is returned.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		o.passes++
		log.With(log.Fields{"pass": o.passes, "cursor": o.cursor}).Info("enumerating catalog")

		err := o.pass(ctx)
		if err == nil {
			log.With(log.Fields{"passes": o.passes, "restarts": o.restarts, "episodes": o.cursor}).Info("season complete")
			return nil
		}

		if !apperrors.IsRecoverable(err) {
			return err
		}

		o.restarts++
		log.With(log.Fields{"cursor": o.cursor, "restarts": o.restarts}).Info(err.Error())
	}
}

func (o *Orchestrator) pass(ctx context.Context) error {
	// popups the site opened on its own would otherwise pile up across restarts
	if closed, err := browser.CloseSecondary(o.opts.Session); err != nil {
		log.Warnf("close stray pages: %s", err)
	} else if closed > 0 {
		log.Debugf("closed %d stray pages", closed)
	}

	primary := o.opts.Session.Primary()

	handles, err := o.opts.Catalog.Enumerate(ctx, primary, o.opts.SeasonURL)
	if err != nil {
		return err
	}

	for _, h := range handles[util.Min(o.cursor, len(handles)):] {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := o.episode(ctx, primary, h); err != nil {
			return err
		}
		o.cursor++
	}
	return nil
}

func (o *Orchestrator) episode(ctx context.Context, primary browser.Page, h episode.Handle) error {
	o.printf("%s: ", h)

	satisfied, err := o.opts.Inventory.IsSatisfied(h.Number)
	if err != nil {
		o.printf("\n")
		return err
	}

	if satisfied {
		o.printf("Skipped.\n")
		return nil
	}

	o.printf("Downloading... ")
	sink := o.sink(h)

	res, err := o.opts.Resolver.Resolve(ctx, primary, h, sink)
	if err != nil {
		if apperrors.IsRecoverable(err) {
			o.printf("Link has expired. Reloading...\n")
		} else {
			o.printf("\n")
		}
		return err
	}

	err = o.opts.Transfer.Execute(ctx, res.Descriptor, o.opts.TargetDir, sink)
	if closeErr := res.Context.Close(); closeErr != nil {
		log.Warnf("close download page of %s: %s", h, closeErr)
	}

	o.printf("\n")
	if err != nil {
		return fmt.Errorf("%s: %w", h, err)
	}
	return nil
}

func (o *Orchestrator) sink(h episode.Handle) progress.Sink {
	if o.opts.NewSink == nil {
		return progress.Nop{}
	}
	return o.opts.NewSink(h)
}

func (o *Orchestrator) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.opts.Out, format, args...)
}
