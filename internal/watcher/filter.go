package watcher

import (
	"path/filepath"
	"sort"
	"strings"
)

// InputSet is the set of input files a watch session reacts to.
type InputSet struct {
	paths map[string]struct{}
}

// NewInputSet builds an InputSet from paths, resolving each to a clean
// absolute path so fsnotify event names can be matched against it.
func NewInputSet(paths []string) (*InputSet, error) {
	s := &InputSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		// A blank path is reported as unreadable by the run; there is nothing to watch.
		if strings.TrimSpace(p) == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		s.paths[filepath.Clean(abs)] = struct{}{}
	}
	return s, nil
}

// Contains reports whether path is one of the inputs.
func (s *InputSet) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, ok := s.paths[filepath.Clean(abs)]
	return ok
}

// Dirs returns the distinct parent directories of the inputs, sorted.
// Directories are watched rather than files so that editors which replace
// a file on save are still seen.
func (s *InputSet) Dirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	for p := range s.paths {
		d := filepath.Dir(p)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Len returns the number of distinct inputs.
func (s *InputSet) Len() int {
	return len(s.paths)
}
