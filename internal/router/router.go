// Package router sends classified lines to one output file per kind,
// creating each file the first time it is needed.
package router

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"linefilter/internal/classifier"
	"linefilter/internal/output"
)

// State is the lifecycle of one kind's destination.
type State int

const (
	// NotYetNeeded means no decision has been made for the kind.
	NotYetNeeded State = iota
	// Open means the destination is accepting lines.
	Open
	// Disabled means lines for the kind are dropped: it had no data, or
	// creating or writing its destination failed, or it was closed.
	Disabled
)

func (s State) String() string {
	switch s {
	case NotYetNeeded:
		return "not-yet-needed"
	case Open:
		return "open"
	default:
		return "disabled"
	}
}

// Op names the filesystem operation a WriteError came from.
type Op string

const (
	OpMkdir Op = "mkdir"
	OpStat  Op = "stat"
	OpOpen  Op = "open"
	OpWrite Op = "write"
	OpClose Op = "close"
)

// WriteError reports a failed operation on a kind's destination.
type WriteError struct {
	Kind classifier.Kind
	Op   Op
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s output %s: %v", e.Op, e.Kind, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Counter reports how many values of a kind have been seen so far.
type Counter interface {
	Count(kind classifier.Kind) uint64
}

// Options configures destination naming and the overwrite policy.
type Options struct {
	Dir    string // Output directory, created on demand
	Prefix string // Prepended to each kind's file name
	Append bool   // Append to existing files instead of truncating
	FS     FS     // Filesystem (default: OSFS)
}

type slot struct {
	state State
	path  string
	file  io.WriteCloser
	w     *bufio.Writer
	lines int
}

// Router owns the per-kind destinations of a single run.
type Router struct {
	opts   Options
	fs     FS
	counts Counter
	out    *output.Output
	slots  [classifier.NumKinds]slot
	errs   []*WriteError
}

// New creates a Router. counts decides, at first use, whether a kind has
// any data worth creating a file for.
func New(opts Options, counts Counter, out *output.Output) *Router {
	fsys := opts.FS
	if fsys == nil {
		fsys = OSFS{}
	}
	if out == nil {
		out = output.Discard()
	}
	r := &Router{opts: opts, fs: fsys, counts: counts, out: out}
	for _, k := range classifier.Kinds {
		r.slots[k].path = r.PathFor(k)
	}
	return r
}

// PathFor returns the destination path of kind k.
func (r *Router) PathFor(k classifier.Kind) string {
	return filepath.Join(r.opts.Dir, r.opts.Prefix+k.FileName())
}

// State returns the destination state of kind k.
func (r *Router) State(k classifier.Kind) State {
	return r.slots[k].state
}

// Lines returns how many lines were accepted for kind k.
func (r *Router) Lines(k classifier.Kind) int {
	return r.slots[k].lines
}

// Errors returns every destination failure seen so far.
func (r *Router) Errors() []*WriteError {
	return r.errs
}

// Write appends line and a newline to kind k's destination, deciding on
// first use whether to create it. Failures are reported and disable the
// kind for the rest of the run.
func (r *Router) Write(k classifier.Kind, line string) {
	s := &r.slots[k]
	if s.state == NotYetNeeded {
		r.resolve(k)
	}
	if s.state != Open {
		return
	}

	if _, err := s.w.WriteString(line); err != nil {
		r.fail(k, OpWrite, err)
		return
	}
	if err := s.w.WriteByte('\n'); err != nil {
		r.fail(k, OpWrite, err)
		return
	}
	s.lines++
}

// Settle makes the creation decision for every kind that never received a
// line, so an operator still hears about a stale file in append mode.
func (r *Router) Settle() {
	for _, k := range classifier.Kinds {
		if r.slots[k].state == NotYetNeeded {
			r.resolve(k)
		}
	}
}

func (r *Router) resolve(k classifier.Kind) {
	s := &r.slots[k]
	name := r.opts.Prefix + k.FileName()

	exists, err := r.fs.Exists(s.path)
	if err != nil {
		r.fail(k, OpStat, err)
		return
	}

	if r.counts.Count(k) == 0 {
		if r.opts.Append && exists {
			r.out.Info("Append mode: %s exists but there is no new data to append", name)
		}
		s.state = Disabled
		return
	}

	if err := r.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		r.fail(k, OpMkdir, err)
		return
	}

	if r.opts.Append {
		if exists {
			r.out.Info("Append mode: adding to existing file %s", name)
		} else {
			r.out.Info("Append mode: %s does not exist, creating a new file", name)
		}
	}

	f, err := r.fs.Create(s.path, r.opts.Append)
	if err != nil {
		r.fail(k, OpOpen, err)
		return
	}
	s.file = f
	s.w = bufio.NewWriter(f)
	s.state = Open
	r.out.Verbose("Writing %s lines to %s", k, s.path)
}

func (r *Router) fail(k classifier.Kind, op Op, err error) {
	s := &r.slots[k]
	werr := &WriteError{Kind: k, Op: op, Path: s.path, Err: err}
	r.errs = append(r.errs, werr)
	r.out.Error("%v; further %s lines will not be written", werr, k)

	if s.file != nil {
		_ = s.file.Close()
	}
	s.file = nil
	s.w = nil
	s.state = Disabled
}

// Close flushes and closes every open destination. It is safe to call
// more than once.
func (r *Router) Close() error {
	var errs []error
	for _, k := range classifier.Kinds {
		s := &r.slots[k]
		if s.state != Open {
			continue
		}

		if err := s.w.Flush(); err != nil {
			r.fail(k, OpWrite, err)
			errs = append(errs, r.errs[len(r.errs)-1])
			continue
		}
		if err := s.file.Close(); err != nil {
			werr := &WriteError{Kind: k, Op: OpClose, Path: s.path, Err: err}
			r.errs = append(r.errs, werr)
			r.out.Error("%v", werr)
			errs = append(errs, werr)
		}
		s.file = nil
		s.w = nil
		s.state = Disabled
	}
	return errors.Join(errs...)
}
