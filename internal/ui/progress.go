package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

const progressWidth = 30

// Progress draws a single-line bar such as "pages [#####.....] 3/6" that is
// redrawn in place. On non-terminal writers it stays silent.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	total   int
	current int
	enabled bool
}

// NewProgress returns a bar for total steps. The bar is only drawn when
// IsTTY(out) holds.
func NewProgress(out io.Writer, label string, total int) *Progress {
	return newProgress(out, label, total, IsTTY(out))
}

func newProgress(out io.Writer, label string, total int, enabled bool) *Progress {
	p := &Progress{out: out, label: label, total: total, enabled: enabled && out != nil && total > 0}
	p.mu.Lock()
	p.draw()
	p.mu.Unlock()
	return p
}

// Increment advances the bar by one step. Safe for concurrent use.
func (p *Progress) Increment() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < p.total {
		p.current++
	}
	p.draw()
}

// Done clears the bar line.
func (p *Progress) Done() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		fmt.Fprint(p.out, "\r\033[2K")
	}
	p.enabled = false
}

func (p *Progress) draw() {
	if !p.enabled {
		return
	}
	fmt.Fprintf(p.out, "\r\033[2K%s", renderBar(p.label, p.current, p.total))
}

func renderBar(label string, current, total int) string {
	filled := 0
	if total > 0 {
		filled = current * progressWidth / total
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled)
	return fmt.Sprintf("%s [%s] %d/%d", label, bar, current, total)
}

func IsTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}
