// Package storage persists a task list to a flat text file, one task per line.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hiroki-koketsu/quokka/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/quokka/internal/storage")

// ErrIO matches every failure to read or write the store.
var ErrIO = errors.New("task store unavailable")

// IOError wraps a filesystem failure with the operation and path involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// MaxLineLength is the longest persisted line Load accepts, in bytes.
const MaxLineLength = 64 * 1024

// ReasonCapacityReached is the LineFailure reason for records past capacity.
const ReasonCapacityReached = "capacity reached"

const truncatedTextLength = 80

// LineFailure describes one persisted line that could not be loaded.
type LineFailure struct {
	Line   int
	Text   string
	Reason string
}

func (f LineFailure) String() string {
	return fmt.Sprintf("line %d: %s", f.Line, f.Reason)
}

// Store reads and writes the task file.
type Store struct {
	path     string
	capacity int
}

// NewStore creates a Store for path that loads at most capacity tasks.
func NewStore(path string, capacity int) *Store {
	return &Store{path: path, capacity: capacity}
}

// Path returns the location of the task file.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the task file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save overwrites the store with tasks. The file is written to a temporary
// sibling and renamed into place, so readers never see a partial write.
func (s *Store) Save(ctx context.Context, tasks []model.Task) error {
	_, span := tracer.Start(ctx, "Store.Save",
		trace.WithAttributes(
			attribute.String("store.path", s.path),
			attribute.Int("task.count", len(tasks)),
		),
	)
	defer span.End()

	if err := s.save(tasks); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return err
	}
	return nil
}

func (s *Store) save(tasks []model.Task) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "create directory", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: s.path, Err: err}
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, task := range tasks {
		if _, err := w.WriteString(model.SerializeLine(task) + "\n"); err != nil {
			tmp.Close()
			return &IOError{Op: "write", Path: s.path, Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &IOError{Op: "replace", Path: s.path, Err: err}
	}
	return nil
}

// Load reads the store. A missing file is a first run and yields no tasks
// and no error. Lines that fail to decode, lines longer than MaxLineLength
// and lines past capacity are reported as LineFailures and skipped; the rest
// of the file is still read. On an IOError the tasks read so far are
// returned with it.
func (s *Store) Load(ctx context.Context) ([]model.Task, []LineFailure, error) {
	_, span := tracer.Start(ctx, "Store.Load",
		trace.WithAttributes(attribute.String("store.path", s.path)),
	)
	defer span.End()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			span.SetAttributes(attribute.Bool("store.exists", false))
			return nil, nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return nil, nil, &IOError{Op: "open", Path: s.path, Err: err}
	}
	defer f.Close()

	var (
		tasks    []model.Task
		failures []LineFailure
	)
	r := bufio.NewReader(f)
	lineNo := 0
	for eof := false; !eof; {
		line, err := r.ReadString('\n')
		switch {
		case errors.Is(err, io.EOF):
			eof = true
			if line == "" {
				continue
			}
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, "read failed")
			return tasks, failures, &IOError{Op: "read", Path: s.path, Err: err}
		}
		lineNo++

		text := strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if len(text) > MaxLineLength {
			failures = append(failures, LineFailure{
				Line:   lineNo,
				Text:   text[:truncatedTextLength] + "...",
				Reason: fmt.Sprintf("line exceeds %d bytes", MaxLineLength),
			})
			continue
		}
		if s.capacity > 0 && len(tasks) >= s.capacity {
			failures = append(failures, LineFailure{Line: lineNo, Text: text, Reason: ReasonCapacityReached})
			continue
		}

		task, err := model.DeserializeLine(text)
		if err != nil {
			reason := err.Error()
			var cre *model.CorruptRecordError
			if errors.As(err, &cre) {
				reason = cre.Reason
			}
			failures = append(failures, LineFailure{Line: lineNo, Text: text, Reason: reason})
			continue
		}
		tasks = append(tasks, task)
	}

	span.SetAttributes(
		attribute.Bool("store.exists", true),
		attribute.Int("task.count", len(tasks)),
		attribute.Int("store.skipped_lines", len(failures)),
	)
	return tasks, failures, nil
}
