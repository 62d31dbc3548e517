// Package scanner reads input files line by line.
package scanner

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// FileNotFound indicates the input file does not exist.
	FileNotFound ScanErrorType = "FILE_NOT_FOUND"
	// PermissionDenied indicates insufficient permissions to read the file.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// NotAFile indicates the path names a directory or other non-regular file.
	NotAFile ScanErrorType = "NOT_A_FILE"
	// ReadFailed indicates an I/O error part way through the file.
	ReadFailed ScanErrorType = "READ_FAILED"
)

// ScanError represents an error that occurred while reading an input file.
type ScanError struct {
	Type ScanErrorType
	Path string
	Line int // last line successfully read, for ReadFailed
	Err  error
}

func (e *ScanError) Error() string {
	msg := string(e.Type) + ": " + e.Path
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// LineFunc receives each line of a file, without its line terminator.
type LineFunc func(line string)

// ScanLines opens path, calls fn for every line in order and closes the
// file before returning, whatever happens. It returns the number of lines
// delivered. Lines have no length limit.
func ScanLines(path string, fn LineFunc) (int, error) {
	f, err := open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return scan(path, f, fn)
}

func open(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, classify(path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, &ScanError{
			Type: NotAFile,
			Path: path,
			Err:  errors.New("path is not a regular file"),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, classify(path, err)
	}
	return f, nil
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &ScanError{Type: FileNotFound, Path: path, Err: err}
	case errors.Is(err, os.ErrPermission):
		return &ScanError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &ScanError{Type: ReadFailed, Path: path, Err: err}
	}
}

func scan(path string, r io.Reader, fn LineFunc) (int, error) {
	br := bufio.NewReader(r)
	n := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			fn(line)
			n++
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, &ScanError{Type: ReadFailed, Path: path, Line: n, Err: err}
		}
	}
}
