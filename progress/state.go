// Package progress tracks transfer state and renders it in place.
package progress

import (
	"fmt"

	"github.com/epget-cli/epget/util"
	"github.com/samber/mo"
)

// Unknown is shown in place of the total when the size was not announced.
const Unknown = "unknown"

// State is the progress of one transfer.
type State struct {
	Transferred int64
	// Total is absent when the size is unknown.
	Total mo.Option[int64]
}

// NewState builds a State; a non-positive total means unknown.
func NewState(transferred, total int64) State {
	s := State{Transferred: transferred, Total: mo.None[int64]()}
	if total > 0 {
		s.Total = mo.Some(total)
	}
	return s
}

// Percentage returns transferred/total in percent, capped at 100, or None when the total is unknown.
func (s State) Percentage() mo.Option[float64] {
	total, ok := s.Total.Get()
	if !ok || total <= 0 {
		return mo.None[float64]()
	}
	return mo.Some(util.Min(float64(s.Transferred)/float64(total)*100, 100))
}

// Ratio is Percentage as a fraction, 0 when unknown.
func (s State) Ratio() float64 {
	return s.Percentage().OrElse(0) / 100
}

// String renders "12.00MB/100.00MB = 12.00%", or "12.00MB/unknown" without a total.
func (s State) String() string {
	total, ok := s.Total.Get()
	if !ok {
		return fmt.Sprintf("%s/%s", util.HumanBytes(s.Transferred), Unknown)
	}
	return fmt.Sprintf("%s/%s = %.2f%%", util.HumanBytes(s.Transferred), util.HumanBytes(total), s.Percentage().OrElse(0))
}
