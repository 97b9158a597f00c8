package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hiroki-koketsu/quokka/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/quokka/internal/repository")

// DefaultCapacity is the number of tasks a list holds unless configured otherwise.
const DefaultCapacity = 100

var (
	ErrCapacityExceeded = errors.New("task list is full")
	ErrIndexOutOfRange  = errors.New("task index out of range")
)

// IndexError reports a 1-based index outside [1, Size].
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	if e.Size == 0 {
		return fmt.Sprintf("task %d does not exist, the list is empty", e.Index)
	}
	return fmt.Sprintf("task %d does not exist, choose between 1 and %d", e.Index, e.Size)
}

// Unwrap allows errors.Is against both ErrIndexOutOfRange and model.ErrInvalidIndex.
func (e *IndexError) Unwrap() []error {
	return []error{ErrIndexOutOfRange, model.ErrInvalidIndex}
}

// Added is the confirmation payload of a successful Add.
type Added struct {
	Task  model.Task
	Count int
}

// Removed is the confirmation payload of a successful Delete.
type Removed struct {
	Task  model.Task
	Count int
}

// TaskList is an ordered, capacity-bounded list of tasks addressed by
// 1-based position. Tasks handed out by its methods are copies; the list
// never shares a task it owns with a caller.
type TaskList struct {
	mu       sync.RWMutex
	tasks    []model.Task
	capacity int
}

// NewTaskList creates an empty TaskList. A non-positive capacity falls back
// to DefaultCapacity.
func NewTaskList(capacity int) *TaskList {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &TaskList{capacity: capacity}
}

// Add appends a task to the end of the list.
func (l *TaskList) Add(ctx context.Context, task model.Task) (Added, error) {
	_, span := tracer.Start(ctx, "TaskList.Add",
		trace.WithAttributes(attribute.String("task.kind", string(task.Kind()))),
	)
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.tasks) >= l.capacity {
		span.SetAttributes(attribute.Bool("task.list.full", true))
		return Added{}, fmt.Errorf("add %q: %w (capacity %d)", task.Description(), ErrCapacityExceeded, l.capacity)
	}

	l.tasks = append(l.tasks, model.Clone(task))

	span.SetAttributes(attribute.Int("task.count", len(l.tasks)))
	return Added{Task: model.Clone(task), Count: len(l.tasks)}, nil
}

// SetStatus marks the task at the 1-based index as done or not done.
func (l *TaskList) SetStatus(ctx context.Context, index int, done bool) (model.Task, error) {
	_, span := tracer.Start(ctx, "TaskList.SetStatus",
		trace.WithAttributes(
			attribute.Int("task.index", index),
			attribute.Bool("task.done", done),
		),
	)
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkIndex(index); err != nil {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, err
	}

	task := l.tasks[index-1]
	if done {
		task.MarkDone()
	} else {
		task.MarkNotDone()
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return model.Clone(task), nil
}

// Delete removes the task at the 1-based index, shifting later tasks up.
func (l *TaskList) Delete(ctx context.Context, index int) (Removed, error) {
	_, span := tracer.Start(ctx, "TaskList.Delete",
		trace.WithAttributes(attribute.Int("task.index", index)),
	)
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkIndex(index); err != nil {
		span.SetAttributes(attribute.Bool("task.found", false))
		return Removed{}, err
	}

	removed := l.tasks[index-1]
	copy(l.tasks[index-1:], l.tasks[index:])
	l.tasks[len(l.tasks)-1] = nil
	l.tasks = l.tasks[:len(l.tasks)-1]

	span.SetAttributes(
		attribute.Bool("task.found", true),
		attribute.Int("task.count", len(l.tasks)),
	)
	return Removed{Task: removed, Count: len(l.tasks)}, nil
}

// All returns a snapshot of the tasks in list order.
func (l *TaskList) All(ctx context.Context) []model.Task {
	_, span := tracer.Start(ctx, "TaskList.All")
	defer span.End()

	l.mu.RLock()
	defer l.mu.RUnlock()

	tasks := make([]model.Task, len(l.tasks))
	for i, task := range l.tasks {
		tasks[i] = model.Clone(task)
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks
}

// Replace swaps the contents of the list. Tasks past Capacity are ignored.
func (l *TaskList) Replace(tasks []model.Task) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(tasks) > l.capacity {
		tasks = tasks[:l.capacity]
	}
	l.tasks = nil
	for _, task := range tasks {
		l.tasks = append(l.tasks, model.Clone(task))
	}
}

// Count returns the current number of tasks.
func (l *TaskList) Count() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.tasks))
}

// Capacity returns the maximum number of tasks the list accepts.
func (l *TaskList) Capacity() int {
	return l.capacity
}

func (l *TaskList) checkIndex(index int) error {
	if index < 1 || index > len(l.tasks) {
		return &IndexError{Index: index, Size: len(l.tasks)}
	}
	return nil
}
