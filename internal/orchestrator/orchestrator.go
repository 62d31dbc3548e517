// Package orchestrator drives a linefilter run: read every input file,
// classify and route each line, then report.
package orchestrator

import (
	"fmt"
	"strings"

	"linefilter/internal/classifier"
	"linefilter/internal/config"
	"linefilter/internal/output"
	"linefilter/internal/report"
	"linefilter/internal/router"
	"linefilter/internal/scanner"
	"linefilter/internal/stats"
)

// RunState is a step of the run state machine.
type RunState string

const (
	StateIdle      RunState = "IDLE"
	StateReading   RunState = "READING_INPUTS"
	StateNoData    RunState = "NO_DATA"
	StateReporting RunState = "REPORTING"
	StateDone      RunState = "DONE"
)

// FileResult represents the outcome of reading a single input file.
type FileResult struct {
	Path      string
	Lines     int // Lines read, blank or not
	DataLines int // Non-blank lines classified
	Error     error
}

// Summary represents the overall results of a run.
type Summary struct {
	States      []RunState // Every state the run passed through, in order
	Files       []FileResult
	Stats       *stats.Set
	Paths       [classifier.NumKinds]string
	Written     [classifier.NumKinds]int
	WriteErrors []*router.WriteError
}

// Run executes one complete pass over cfg.InputFiles. Per-file read errors
// and per-kind write errors are reported and recorded in the Summary; they
// do not fail the run. An error is returned only for an invalid
// configuration or an unexpected failure. Output files are closed on every
// path.
func Run(cfg *config.Configuration, out *output.Output) (summary *Summary, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if out == nil {
		out = output.Discard()
	}

	summary = &Summary{
		States: []RunState{StateIdle},
		Files:  make([]FileResult, 0, len(cfg.InputFiles)),
		Stats:  stats.NewSet(),
	}
	r := router.New(router.Options{
		Dir:    cfg.OutputDir,
		Prefix: cfg.Prefix,
		Append: cfg.Append,
	}, summary.Stats, out)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected failure during processing: %v", p)
			out.Error("%v", err)
		}
		// Close failures are already reported and recorded by the router.
		_ = r.Close()
		for _, k := range classifier.Kinds {
			summary.Paths[k] = r.PathFor(k)
			summary.Written[k] = r.Lines(k)
		}
		summary.WriteErrors = r.Errors()
		summary.enter(StateDone)
	}()

	summary.enter(StateReading)
	readInputs(cfg.InputFiles, summary, r, out)

	if !summary.AnyData() {
		summary.enter(StateNoData)
		out.Info("No data found in the input files; nothing was written")
		return summary, nil
	}

	r.Settle()

	if cfg.ReportRequested() {
		summary.enter(StateReporting)
		mode := report.Short
		if cfg.FullStats {
			mode = report.Full
		}
		out.Print(report.Render(summary.Stats.Snapshots(), report.Options{
			Mode:   mode,
			Styled: out.IsTTY(),
		}))
	}

	return summary, nil
}

// trimLine strips leading and trailing control characters and spaces
// (everything up to U+0020). Other Unicode spaces are data.
func trimLine(line string) string {
	return strings.TrimFunc(line, func(r rune) bool { return r <= ' ' })
}

// readInputs processes each file in order. A file that cannot be read is
// reported and skipped.
func readInputs(files []string, summary *Summary, r *router.Router, out *output.Output) {
	out.StartProgress(len(files))
	defer out.EndProgress()

	for i, path := range files {
		out.UpdateProgress(i + 1)

		result := FileResult{Path: path}
		n, err := scanner.ScanLines(path, func(line string) {
			line = trimLine(line)
			if line == "" {
				return
			}
			result.DataLines++
			c := classifier.ClassifyLine(line)
			summary.Stats.Record(c)
			r.Write(c.Kind, c.Text)
		})
		result.Lines = n
		if err != nil {
			result.Error = err
			out.Error("failed to read %s: %v", path, err)
		}
		out.Verbose("%s: %d lines read, %d classified", path, result.Lines, result.DataLines)

		summary.Files = append(summary.Files, result)
	}
}

func (s *Summary) enter(state RunState) {
	s.States = append(s.States, state)
}

// AnyData returns true if at least one non-blank line was seen.
func (s *Summary) AnyData() bool {
	return s.Stats.Total() > 0
}

// FinalState returns the state the run settled in before Done.
func (s *Summary) FinalState() RunState {
	for i := len(s.States) - 1; i >= 0; i-- {
		if s.States[i] != StateDone {
			return s.States[i]
		}
	}
	return StateIdle
}

// FileErrorCount returns the number of input files that failed to read.
func (s *Summary) FileErrorCount() int {
	n := 0
	for _, f := range s.Files {
		if f.Error != nil {
			n++
		}
	}
	return n
}

// HasErrors returns true if any input or output failed during the run.
func (s *Summary) HasErrors() bool {
	return s.FileErrorCount() > 0 || len(s.WriteErrors) > 0
}
