package orchestrator

import (
	"fmt"
	"strings"

	"linefilter/internal/classifier"
)

// PrintSummary returns a one-line description of the run.
func (s *Summary) PrintSummary() string {
	return fmt.Sprintf("Processed %d files: %d lines classified, %d read errors, %d write errors",
		len(s.Files), s.Stats.Total(), s.FileErrorCount(), len(s.WriteErrors))
}

// Destinations describes the files written during the run, one per line,
// for verbose output. Kinds with nothing written are skipped.
func (s *Summary) Destinations() string {
	var lines []string
	for _, k := range classifier.Kinds {
		if s.Written[k] == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %d lines -> %s", k, s.Written[k], s.Paths[k]))
	}
	return strings.Join(lines, "\n")
}
