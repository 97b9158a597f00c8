package model

import (
	"fmt"
	"strings"
)

// FieldSeparator delimits the fields of a persisted task line.
const FieldSeparator = " | "

// SerializeLine encodes a task as a single line:
//
//	T | 0 | read book
//	D | 1 | submit report | 2024-12-01
//	E | 0 | team sync | 2024-11-01 1400 | 2024-11-01 1500
func SerializeLine(t Task) string {
	done := "0"
	if t.IsDone() {
		done = "1"
	}
	parts := append([]string{string(t.Kind()), done, t.Description()}, t.fields()...)
	return strings.Join(parts, FieldSeparator)
}

// DeserializeLine decodes a line produced by SerializeLine. Failures are
// returned as *CorruptRecordError.
func DeserializeLine(line string) (Task, error) {
	parts := strings.Split(line, FieldSeparator)
	if len(parts) < 3 {
		return nil, corrupt(line, "expected at least 3 fields, got %d", len(parts))
	}

	var done bool
	switch parts[1] {
	case "0":
	case "1":
		done = true
	default:
		return nil, corrupt(line, "invalid done flag %q", parts[1])
	}

	var (
		task Task
		err  error
	)
	switch Kind(parts[0]) {
	case KindTodo:
		if len(parts) != 3 {
			return nil, corrupt(line, "todo expects 3 fields, got %d", len(parts))
		}
		task, err = NewTodo(parts[2])
	case KindDeadline:
		if len(parts) != 4 {
			return nil, corrupt(line, "deadline expects 4 fields, got %d", len(parts))
		}
		task, err = NewDeadline(parts[2], parts[3])
	case KindEvent:
		if len(parts) != 5 {
			return nil, corrupt(line, "event expects 5 fields, got %d", len(parts))
		}
		task, err = NewEvent(parts[2], parts[3], parts[4])
	default:
		return nil, corrupt(line, "unknown task type %q", parts[0])
	}
	if err != nil {
		return nil, corrupt(line, "%s", err)
	}

	if done {
		task.MarkDone()
	}
	return task, nil
}

func corrupt(line, format string, args ...any) *CorruptRecordError {
	return &CorruptRecordError{Line: line, Reason: fmt.Sprintf(format, args...)}
}
