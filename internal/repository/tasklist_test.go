package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hiroki-koketsu/quokka/internal/model"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func todo(t *testing.T, desc string) model.Task {
	t.Helper()
	task, err := model.NewTodo(desc)
	if err != nil {
		t.Fatalf("NewTodo failed: %v", err)
	}
	return task
}

func listOf(t *testing.T, capacity int, descs ...string) *TaskList {
	t.Helper()
	l := NewTaskList(capacity)
	for _, d := range descs {
		if _, err := l.Add(context.Background(), todo(t, d)); err != nil {
			t.Fatalf("Add(%q) failed: %v", d, err)
		}
	}
	return l
}

func descriptions(l *TaskList) []string {
	var out []string
	for _, task := range l.All(context.Background()) {
		out = append(out, task.Description())
	}
	return out
}

func TestAddReturnsConfirmation(t *testing.T) {
	l := NewTaskList(10)
	added, err := l.Add(context.Background(), todo(t, "read book"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added.Count != 1 {
		t.Errorf("Count = %d, want 1", added.Count)
	}
	if got := model.Display(added.Task); got != "[T][ ] read book" {
		t.Errorf("Display = %q", got)
	}
}

func TestAddBeyondCapacity(t *testing.T) {
	l := listOf(t, 3, "a", "b", "c")

	_, err := l.Add(context.Background(), todo(t, "d"))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if l.Count() != 3 {
		t.Errorf("Count = %d, want 3", l.Count())
	}
}

func TestDefaultCapacity(t *testing.T) {
	l := NewTaskList(0)
	if l.Capacity() != DefaultCapacity {
		t.Fatalf("Capacity = %d, want %d", l.Capacity(), DefaultCapacity)
	}
	for i := 0; i < DefaultCapacity; i++ {
		if _, err := l.Add(context.Background(), todo(t, fmt.Sprintf("task %d", i))); err != nil {
			t.Fatalf("Add #%d failed: %v", i+1, err)
		}
	}
	if _, err := l.Add(context.Background(), todo(t, "one too many")); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	l := listOf(t, 10, "a", "b")

	task, err := l.SetStatus(context.Background(), 2, true)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if !task.IsDone() || task.Description() != "b" {
		t.Errorf("unexpected task %s", task)
	}

	task, err = l.SetStatus(context.Background(), 2, false)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if task.IsDone() {
		t.Error("expected task to be not done")
	}
}

func TestIndexOutOfRange(t *testing.T) {
	for _, index := range []int{0, -1, 3, 100} {
		l := listOf(t, 10, "a", "b")

		_, err := l.SetStatus(context.Background(), index, true)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("SetStatus(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}
		if !errors.Is(err, model.ErrInvalidIndex) {
			t.Errorf("SetStatus(%d): expected model.ErrInvalidIndex, got %v", index, err)
		}

		_, err = l.Delete(context.Background(), index)
		var ie *IndexError
		if !errors.As(err, &ie) {
			t.Fatalf("Delete(%d): expected *IndexError, got %v", index, err)
		}
		if ie.Size != 2 {
			t.Errorf("IndexError.Size = %d, want 2", ie.Size)
		}

		for _, task := range l.All(context.Background()) {
			if task.IsDone() {
				t.Errorf("index %d mutated task %s", index, task)
			}
		}
		if l.Count() != 2 {
			t.Errorf("index %d changed Count to %d", index, l.Count())
		}
	}
}

func TestDeletePreservesOrder(t *testing.T) {
	l := listOf(t, 10, "a", "b", "c", "d", "e")

	removed, err := l.Delete(context.Background(), 2)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed.Task.Description() != "b" || removed.Count != 4 {
		t.Errorf("removed = {%s %d}", removed.Task, removed.Count)
	}

	want := []string{"a", "c", "d", "e"}
	got := descriptions(l)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	if _, err := l.Delete(context.Background(), 4); err != nil {
		t.Fatalf("Delete last failed: %v", err)
	}
	if got := descriptions(l); fmt.Sprint(got) != fmt.Sprint([]string{"a", "c", "d"}) {
		t.Errorf("order after deleting last = %v", got)
	}
}

func TestAllReturnsSnapshot(t *testing.T) {
	l := listOf(t, 10, "a", "b")
	snapshot := l.All(context.Background())
	if _, err := l.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(snapshot) != 2 || snapshot[0].Description() != "a" {
		t.Errorf("snapshot changed after delete: %v", snapshot)
	}
}

func TestReturnedTasksAreDetachedFromList(t *testing.T) {
	l := NewTaskList(10)
	original := todo(t, "a")
	added, err := l.Add(context.Background(), original)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	original.MarkDone()
	added.Task.MarkDone()
	l.All(context.Background())[0].MarkDone()

	marked, err := l.SetStatus(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	marked.MarkDone()

	if l.All(context.Background())[0].IsDone() {
		t.Error("mutating a returned task changed the list")
	}
}

func TestReplaceTruncatesToCapacity(t *testing.T) {
	l := NewTaskList(2)
	l.Replace([]model.Task{todo(t, "a"), todo(t, "b"), todo(t, "c")})
	if got := descriptions(l); fmt.Sprint(got) != fmt.Sprint([]string{"a", "b"}) {
		t.Errorf("tasks = %v", got)
	}
}

func TestOperationsAreTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)

	l := listOf(t, 10, "a")
	if _, err := l.SetStatus(context.Background(), 1, true); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	names := map[string]bool{}
	for _, span := range recorder.Ended() {
		names[span.Name()] = true
	}
	for _, want := range []string{"TaskList.Add", "TaskList.SetStatus"} {
		if !names[want] {
			t.Errorf("missing span %q, got %v", want, names)
		}
	}
}
