// Package outwriter renders sonar-cli results as tables, JSON or CSV.
package outwriter

import (
	"os"

	"github.com/huangsam/sonar-cli/internal/contract"
	"golang.org/x/term"
)

// OutWriter is the single entry point core uses to render a result.
type OutWriter struct{}

// NewOutWriter returns an OutWriter.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

const (
	fallbackWidth = 80
	minPathWidth  = 15
	maxPathWidth  = 90
	tableChrome   = 10
)

// GetMaxTablePathWidth returns how wide a component path column may be once
// otherColumns worth of space is taken by the rest of the row.
func GetMaxTablePathWidth(cfg *contract.Config, otherColumns int) int {
	width := cfg.Width
	if width <= 0 {
		width = fallbackWidth
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	return min(max(width-otherColumns-tableChrome, minPathWidth), maxPathWidth)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
