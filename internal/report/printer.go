package report

import (
	"fmt"
	"io"

	"github.com/aretw0/exprmig/internal/engine"
	"github.com/aretw0/exprmig/internal/presentation/tui"
	"github.com/muesli/termenv"
)

// Printer writes the human-facing output of a run.
type Printer struct {
	out    io.Writer
	term   *termenv.Output
	render func(string) (string, error)
}

// PrinterOption configures the Printer.
type PrinterOption func(*Printer)

// WithRenderer overrides the markdown renderer.
func WithRenderer(render func(string) (string, error)) PrinterOption {
	return func(p *Printer) {
		p.render = render
	}
}

// NewPrinter creates a printer for out. Markdown goes through glamour only when out
// is a terminal.
func NewPrinter(out io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{
		out:    out,
		term:   termenv.NewOutput(out),
		render: tui.Plain,
	}
	if tui.IsTerminal(out) {
		p.render = tui.NewRenderer(tui.Width(out, 120))
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Summary prints the occurrence and commit counters.
func (p *Printer) Summary(res *engine.Result) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.term.String(SummaryLine(res)).Bold())
	if res.Commit {
		fmt.Fprintln(p.out, p.term.String(CommitLine(res)).Bold())
	}
	if n := len(res.Errors()); n > 0 {
		msg := fmt.Sprintf("%d errors, see the errors artifact", n)
		fmt.Fprintln(p.out, p.term.String(msg).Foreground(p.term.Color("#fb7185")))
	}
}

// SummaryLine reports how many occurrences were found in how many documents.
func SummaryLine(res *engine.Result) string {
	return fmt.Sprintf("Found %d legacy expressions in %d documents", len(res.Occurrences), res.Documents())
}

// CommitLine reports how many documents were persisted.
func CommitLine(res *engine.Result) string {
	return fmt.Sprintf("Updated %d documents in the database", res.Replaced)
}

// Statistics prints the occurrence pivot.
func (p *Printer) Statistics(pivot Pivot) error {
	if pivot.Empty() {
		return nil
	}
	out, err := p.render(pivot.Markdown())
	if err != nil {
		return fmt.Errorf("failed to render statistics: %w", err)
	}
	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, out)
	return nil
}

// Artifacts lists the files written for the session.
func (p *Printer) Artifacts(a Artifacts) {
	fmt.Fprintln(p.out)
	for _, path := range a.Paths() {
		fmt.Fprintln(p.out, p.term.String("  "+path).Faint())
	}
}

// Line prints a plain message.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
