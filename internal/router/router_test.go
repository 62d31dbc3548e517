package router

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linefilter/internal/classifier"
	"linefilter/internal/output"
)

type fixedCounts [classifier.NumKinds]uint64

func (c *fixedCounts) Count(k classifier.Kind) uint64 { return c[k] }

func newTestRouter(t *testing.T, opts Options, counts *fixedCounts) (*Router, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	out := output.New(output.Config{Writer: &stdout, ErrWriter: &stderr})
	return New(opts, counts, out), &stdout, &stderr
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestWrite_CreatesFileLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	counts := &fixedCounts{classifier.Integer: 2}
	r, _, _ := newTestRouter(t, Options{Dir: dir, Prefix: "p_"}, counts)

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("output directory must not exist before the first write")
	}

	r.Write(classifier.Integer, "1")
	r.Write(classifier.Integer, "2")
	r.Settle()
	if err := r.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	got := readLines(t, filepath.Join(dir, "p_integers.txt"))
	if strings.Join(got, ",") != "1,2" {
		t.Errorf("expected lines 1,2, got %q", got)
	}
	for _, name := range []string{"p_floats.txt", "p_strings.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s must not be created for a kind with no data", name)
		}
	}
	if r.Lines(classifier.Integer) != 2 {
		t.Errorf("expected 2 lines accepted, got %d", r.Lines(classifier.Integer))
	}
}

func TestWrite_PrefixWithDirectoryPart(t *testing.T) {
	dir := t.TempDir()
	counts := &fixedCounts{classifier.Integer: 1}
	r, _, _ := newTestRouter(t, Options{Dir: dir, Prefix: "sub/p_"}, counts)

	r.Write(classifier.Integer, "7")
	r.Settle()
	if err := r.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	want := filepath.Join(dir, "sub", "p_integers.txt")
	if got := r.PathFor(classifier.Integer); got != want {
		t.Errorf("expected path %s, got %s", want, got)
	}
	if got := readLines(t, want); len(got) != 1 || got[0] != "7" {
		t.Errorf("expected line 7, got %q", got)
	}
	if len(r.Errors()) != 0 {
		t.Errorf("expected no write errors, got %v", r.Errors())
	}
}

func TestWrite_OverwriteAndAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.txt")
	if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		append     bool
		wantLines  []string
		wantNotice string
	}{
		{"overwrite", false, []string{"new"}, ""},
		{"append", true, []string{"old", "new"}, "Append mode: adding to existing file strings.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
				t.Fatal(err)
			}
			counts := &fixedCounts{classifier.String: 1}
			r, stdout, _ := newTestRouter(t, Options{Dir: dir, Append: tt.append}, counts)

			r.Write(classifier.String, "new")
			if err := r.Close(); err != nil {
				t.Fatal(err)
			}

			got := readLines(t, path)
			if strings.Join(got, "|") != strings.Join(tt.wantLines, "|") {
				t.Errorf("expected %q, got %q", tt.wantLines, got)
			}
			if tt.wantNotice != "" && !strings.Contains(stdout.String(), tt.wantNotice) {
				t.Errorf("expected notice %q, got %q", tt.wantNotice, stdout.String())
			}
		})
	}
}

func TestAppend_MissingFileNotice(t *testing.T) {
	dir := t.TempDir()
	counts := &fixedCounts{classifier.Float: 1}
	r, stdout, _ := newTestRouter(t, Options{Dir: dir, Append: true}, counts)

	r.Write(classifier.Float, "1.5")
	r.Close()

	if !strings.Contains(stdout.String(), "Append mode: floats.txt does not exist, creating a new file") {
		t.Errorf("expected creation notice, got %q", stdout.String())
	}
}

func TestSettle_StaleFileInAppendMode(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "integers.txt")
	if err := os.WriteFile(stale, []byte("7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	counts := &fixedCounts{}
	r, stdout, _ := newTestRouter(t, Options{Dir: dir, Append: true}, counts)
	r.Settle()
	r.Close()

	if !strings.Contains(stdout.String(), "Append mode: integers.txt exists but there is no new data to append") {
		t.Errorf("expected stale file notice, got %q", stdout.String())
	}
	if got := readLines(t, stale); len(got) != 1 || got[0] != "7" {
		t.Errorf("stale file must be left untouched, got %q", got)
	}
	for _, k := range classifier.Kinds {
		if r.State(k) != Disabled {
			t.Errorf("%v: expected disabled after settle, got %v", k, r.State(k))
		}
	}
}

func TestSettle_NoNoticeWithoutAppend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "integers.txt"), []byte("7\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r, stdout, _ := newTestRouter(t, Options{Dir: dir}, &fixedCounts{})
	r.Settle()

	if stdout.Len() != 0 {
		t.Errorf("expected no notices, got %q", stdout.String())
	}
}

// fakeFS fails the configured operation and records what it created.
type fakeFS struct {
	mkdirErr  error
	createErr error
	writeErr  error
	created   []string
}

func (f *fakeFS) MkdirAll(string, fs.FileMode) error { return f.mkdirErr }
func (f *fakeFS) Exists(string) (bool, error) { return false, nil }
func (f *fakeFS) Create(path string, _ bool) (io.WriteCloser, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, path)
	return &failingFile{err: f.writeErr}, nil
}

type failingFile struct {
	err    error
	closed int
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(p), nil
}

func (f *failingFile) Close() error {
	f.closed++
	return nil
}

func TestFailures_DisableKind(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		fs     *fakeFS
		wantOp Op
	}{
		{"mkdir", &fakeFS{mkdirErr: boom}, OpMkdir},
		{"open", &fakeFS{createErr: boom}, OpOpen},
		{"flush", &fakeFS{writeErr: boom}, OpWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := &fixedCounts{classifier.Integer: 3, classifier.String: 1}
			r, _, stderr := newTestRouter(t, Options{Dir: "out", FS: tt.fs}, counts)

			r.Write(classifier.Integer, "1")
			r.Write(classifier.Integer, "2")
			r.Write(classifier.String, "s")
			r.Close()

			errs := r.Errors()
			if len(errs) == 0 {
				t.Fatal("expected a recorded error")
			}
			if errs[0].Op != tt.wantOp || errs[0].Kind != classifier.Integer {
				t.Errorf("expected %s error for integers, got %v", tt.wantOp, errs[0])
			}
			if !errors.Is(errs[0], boom) {
				t.Errorf("expected wrapped cause, got %v", errs[0])
			}
			if !strings.Contains(stderr.String(), "integers.txt") {
				t.Errorf("expected the affected file to be named, got %q", stderr.String())
			}
			if r.State(classifier.Integer) != Disabled {
				t.Errorf("expected integers disabled, got %v", r.State(classifier.Integer))
			}
		})
	}
}

func TestFailure_OtherKindsContinue(t *testing.T) {
	dir := t.TempDir()
	counts := &fixedCounts{classifier.Integer: 1, classifier.String: 1}
	r, _, _ := newTestRouter(t, Options{Dir: dir}, counts)

	// A directory where the integer file should be makes its open fail.
	if err := os.Mkdir(filepath.Join(dir, "integers.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	r.Write(classifier.Integer, "1")
	r.Write(classifier.String, "ok")
	r.Write(classifier.Integer, "2")
	if err := r.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	if len(r.Errors()) != 1 {
		t.Errorf("expected exactly one error, got %d", len(r.Errors()))
	}
	if got := readLines(t, filepath.Join(dir, "strings.txt")); got[0] != "ok" {
		t.Errorf("expected strings to be written, got %q", got)
	}
}

func TestClose_Idempotent(t *testing.T) {
	f := &fakeFS{}
	counts := &fixedCounts{classifier.Float: 1}
	r, _, _ := newTestRouter(t, Options{Dir: "out", FS: f}, counts)

	r.Write(classifier.Float, "2.5")
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if len(f.created) != 1 {
		t.Errorf("expected one destination, got %v", f.created)
	}
	r.Write(classifier.Float, "3.5")
	if r.Lines(classifier.Float) != 1 {
		t.Errorf("writes after close must be dropped, got %d lines", r.Lines(classifier.Float))
	}
}
