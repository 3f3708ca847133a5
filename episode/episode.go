// Package episode defines the handles and download descriptors passed between catalog, resolver and transfer.
package episode

import (
	"fmt"
	"strings"

	"github.com/epget-cli/epget/browser"
)

// Handle identifies one catalog entry during a single enumeration pass.
type Handle struct {
	// Ordinal is the 0-based position in the catalog.
	Ordinal int
	// Number is the displayed number without leading zeros.
	Number string
	// Raw is the number as displayed.
	Raw string
	// Quality is the label of the first selectable quality, if any.
	Quality string
	// Ref locates the entry's quality and redirect elements.
	Ref browser.Element
}

func (h Handle) String() string {
	return fmt.Sprintf("Episode %s", h.Number)
}

// NormalizeNumber trims whitespace and leading zeros. An all-zero number stays "0".
func NormalizeNumber(raw string) string {
	n := strings.TrimLeft(strings.TrimSpace(raw), "0")
	if n == "" && strings.TrimSpace(raw) != "" {
		return "0"
	}
	return n
}
