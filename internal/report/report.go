// Package report renders the end-of-run statistics.
package report

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"linefilter/internal/classifier"
	"linefilter/internal/stats"
)

// Mode selects how much of each accumulator is shown.
type Mode int

const (
	// Short shows the count per kind.
	Short Mode = iota
	// Full adds min/max/sum/average for numbers and length extremes for strings.
	Full
)

// Heading is the first line of every report.
const Heading = "--- Statistics ---"

var (
	ColorAccent = lipgloss.Color("#88C0D0")
	ColorDim    = lipgloss.Color("#7A8291")

	headingStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(ColorDim)
)

// Options controls rendering.
type Options struct {
	Mode   Mode
	Styled bool // Apply terminal styling
}

// Title returns the human-readable section title of a kind.
func Title(k classifier.Kind) string {
	switch k {
	case classifier.Integer:
		return "Integers"
	case classifier.Float:
		return "Floats"
	default:
		return "Strings"
	}
}

type row struct {
	label string
	value string
}

// Render formats the snapshots as a report. Kinds with no values are
// left out entirely.
func Render(snapshots []stats.Snapshot, opts Options) string {
	style := func(s lipgloss.Style, text string) string {
		if !opts.Styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(style(headingStyle, Heading))
	b.WriteString("\n")

	for _, snap := range snapshots {
		if snap.Count == 0 {
			continue
		}

		b.WriteString("\n")
		b.WriteString(style(titleStyle, Title(snap.Kind)+":"))
		b.WriteString("\n")

		for _, r := range rows(snap, opts.Mode) {
			b.WriteString("  ")
			b.WriteString(style(labelStyle, r.label+":"))
			b.WriteString(" ")
			b.WriteString(r.value)
			b.WriteString("\n")
		}
	}

	return b.String()
}

func rows(snap stats.Snapshot, mode Mode) []row {
	out := []row{{"Count", strconv.FormatUint(snap.Count, 10)}}
	if mode != Full {
		return out
	}

	switch snap.Kind {
	case classifier.Integer, classifier.Float:
		out = append(out,
			row{"Min", snap.Min},
			row{"Max", snap.Max},
			row{"Sum", snap.Sum},
			row{"Average", strconv.FormatFloat(snap.Average, 'f', stats.AveragePlaces, 64)},
		)
	case classifier.String:
		out = append(out,
			row{"Min length", strconv.Itoa(snap.MinLength)},
			row{"Max length", strconv.Itoa(snap.MaxLength)},
		)
	}
	return out
}
