package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/time/rate"
)

// Line redraws progress in place on a terminal line that starts with a fixed prefix.
//
// On a non-interactive writer intermediate updates are dropped and only the final
// state is appended after the prefix the caller already printed.
type Line struct {
	w           io.Writer
	prefix      string
	interactive bool
	width       int
	bar         *bar.Model
	throttle    *rate.Sometimes

	mu    sync.Mutex
	drawn int
}

// LineOption configures a Line.
type LineOption func(*Line)

// WithInteractive enables in-place redraws.
func WithInteractive(interactive bool) LineOption {
	return func(l *Line) { l.interactive = interactive }
}

// WithWidth truncates every redraw to width cells. Zero disables truncation.
func WithWidth(width int) LineOption {
	return func(l *Line) { l.width = width }
}

// WithRefresh limits redraws to one per interval. Zero redraws on every update.
func WithRefresh(interval time.Duration) LineOption {
	return func(l *Line) {
		if interval > 0 {
			l.throttle = &rate.Sometimes{Interval: interval}
		} else {
			l.throttle = nil
		}
	}
}

// WithBar draws a progress bar before the counters when the total is known.
func WithBar(width int) LineOption {
	return func(l *Line) {
		m := bar.New(bar.WithDefaultGradient(), bar.WithWidth(width), bar.WithoutPercentage())
		l.bar = &m
	}
}

// NewLine returns a Line writing to w.
func NewLine(w io.Writer, prefix string, opts ...LineOption) *Line {
	l := &Line{w: w, prefix: prefix, throttle: &rate.Sometimes{Interval: 100 * time.Millisecond}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Line) Update(s State) {
	if !l.interactive {
		return
	}

	if l.throttle == nil {
		l.redraw(s)
		return
	}
	l.throttle.Do(func() { l.redraw(s) })
}

func (l *Line) Finish(s State) {
	if !l.interactive {
		l.mu.Lock()
		defer l.mu.Unlock()
		_, _ = fmt.Fprint(l.w, l.render(s))
		return
	}
	l.redraw(s)
}

func (l *Line) redraw(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()

	text := l.prefix + l.render(s)
	if l.width > 0 {
		text = truncate.String(text, uint(l.width))
	}

	width := ansi.PrintableRuneWidth(text)
	pad := ""
	if width < l.drawn {
		pad = strings.Repeat(" ", l.drawn-width)
	}
	_, _ = fmt.Fprintf(l.w, "\r%s%s", text, pad)
	l.drawn = width
}

func (l *Line) render(s State) string {
	if l.bar == nil || !s.Total.IsPresent() {
		return s.String()
	}
	return l.bar.ViewAs(s.Ratio()) + " " + s.String()
}
