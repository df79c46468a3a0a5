package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/ppiankov/swarm/internal/model"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

const rule = "═══════════════════════════════════════════════════════════"

// scoreColor picks green for strong, yellow for middling and red for weak scores
func scoreColor(score, threshold int) *color.Color {
	switch {
	case score > threshold+25:
		return green
	case score > threshold:
		return yellow
	default:
		return red
	}
}

// progressPrinter prints one mark per finished entity, like a test runner
type progressPrinter struct {
	w io.Writer
}

func (p progressPrinter) mark(entity string, err error) {
	if err != nil {
		_, _ = red.Fprint(p.w, "x")
		return
	}
	_, _ = green.Fprint(p.w, ".")
}

// printResults renders ranked results as aligned, colored lines
func printResults(w io.Writer, ranked []model.QueryResult, threshold int) {
	width := 0
	for _, r := range ranked {
		width = max(width, len(r.Entity))
	}

	for _, r := range ranked {
		c := scoreColor(r.ScoreValue(), threshold)
		_, _ = c.Fprintf(w, "%3d", r.ScoreValue())
		_, _ = fmt.Fprintf(w, "  %-*s  %s\n", width, r.Entity, r.Reason)
		for _, cr := range r.Criteria {
			_, _ = faint.Fprintf(w, "     %*s  - %s: %d %s\n", width, "", cr.Name, cr.Score, cr.Reason)
		}
	}
}

// printFailures lists failed entities on stderr
func printFailures(failures []model.Failure) {
	if len(failures) == 0 {
		return
	}
	_, _ = red.Fprintf(os.Stderr, "\n%d entities failed:\n", len(failures))
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Entity, f.Error)
	}
}
