// Package console prints the human readable status lines of a sync
// session.
package console

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Level selects the colour of a status line.
type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelError
)

// Printer writes coloured status lines. Colours are dropped automatically
// when the output is not a terminal.
type Printer struct {
	out    io.Writer
	mu     sync.Mutex
	styles map[Level]lipgloss.Style
}

// PrinterOption configures a Printer.
type PrinterOption func(*printerOptions)

type printerOptions struct {
	colorFrom io.Writer
}

// WithColorFrom detects colour support on w instead of the output. Use it
// when the output wraps the terminal, as a TermWriter does.
func WithColorFrom(w io.Writer) PrinterOption {
	return func(o *printerOptions) { o.colorFrom = w }
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, opts ...PrinterOption) *Printer {
	o := printerOptions{colorFrom: out}
	for _, opt := range opts {
		opt(&o)
	}

	r := lipgloss.NewRenderer(o.colorFrom)
	return &Printer{
		out: out,
		styles: map[Level]lipgloss.Style{
			LevelSuccess: r.NewStyle().Foreground(lipgloss.Color("2")),
			LevelInfo:    r.NewStyle().Foreground(lipgloss.Color("3")),
			LevelError:   r.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

// Success prints a green line.
func (p *Printer) Success(format string, args ...interface{}) {
	p.print(LevelSuccess, format, args...)
}

// Info prints a yellow line.
func (p *Printer) Info(format string, args ...interface{}) {
	p.print(LevelInfo, format, args...)
}

// Error prints a red line.
func (p *Printer) Error(format string, args ...interface{}) {
	p.print(LevelError, format, args...)
}

// Plain prints without colour.
func (p *Printer) Plain(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) print(level Level, format string, args ...interface{}) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}

	// Render per line, lipgloss pads multi-line blocks to a common width.
	style := p.styles[level]
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, strings.Join(lines, "\n"))
}

// TermWriter forwards writes to an underlying writer, translating "\n" to
// "\r\n" while the terminal is in raw mode so lines do not staircase.
type TermWriter struct {
	w   io.Writer
	raw atomic.Bool
}

// NewTermWriter wraps w.
func NewTermWriter(w io.Writer) *TermWriter {
	return &TermWriter{w: w}
}

// SetRaw toggles newline translation.
func (t *TermWriter) SetRaw(raw bool) {
	t.raw.Store(raw)
}

// Fd exposes the descriptor of the underlying writer so terminal detection
// sees through the wrapper. It is invalid when there is none.
func (t *TermWriter) Fd() uintptr {
	if f, ok := t.w.(interface{ Fd() uintptr }); ok {
		return f.Fd()
	}
	return ^uintptr(0)
}

// Write implements io.Writer.
func (t *TermWriter) Write(p []byte) (int, error) {
	if !t.raw.Load() {
		return t.w.Write(p)
	}
	converted := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	if _, err := t.w.Write(converted); err != nil {
		return 0, err
	}
	return len(p), nil
}
