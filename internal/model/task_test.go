package model

import (
	"errors"
	"reflect"
	"testing"
)

func mustTodo(t *testing.T, desc string) *Todo {
	t.Helper()
	task, err := NewTodo(desc)
	if err != nil {
		t.Fatalf("NewTodo(%q) failed: %v", desc, err)
	}
	return task
}

func TestDisplay(t *testing.T) {
	todo := mustTodo(t, "read book")
	deadline, err := NewDeadline("submit report", "2024-12-01")
	if err != nil {
		t.Fatalf("NewDeadline failed: %v", err)
	}
	event, err := NewEvent("team sync", "Mon 2pm", "Mon 3pm")
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	event.MarkDone()

	tests := []struct {
		name string
		task Task
		want string
	}{
		{"todo", todo, "[T][ ] read book"},
		{"deadline", deadline, "[D][ ] submit report (by: 2024-12-01)"},
		{"event done", event, "[E][X] team sync (from: Mon 2pm to: Mon 3pm)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Display(tt.task); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkIsIdempotent(t *testing.T) {
	task := mustTodo(t, "water plants")
	task.MarkDone()
	task.MarkDone()
	if !task.IsDone() {
		t.Fatal("expected task to be done")
	}
	task.MarkNotDone()
	task.MarkNotDone()
	if task.IsDone() {
		t.Fatal("expected task to be not done")
	}
}

func TestConstructorsRejectEmptyFields(t *testing.T) {
	if _, err := NewTodo("   "); !errors.Is(err, ErrValidation) {
		t.Errorf("NewTodo: expected ErrValidation, got %v", err)
	}
	if _, err := NewDeadline("report", " "); !errors.Is(err, ErrValidation) {
		t.Errorf("NewDeadline: expected ErrValidation, got %v", err)
	}
	if _, err := NewEvent("sync", "Mon", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("NewEvent: expected ErrValidation, got %v", err)
	}
}

func TestEqual(t *testing.T) {
	a := mustTodo(t, "same")
	b := mustTodo(t, "same")
	if !Equal(a, b) {
		t.Fatal("expected equal todos")
	}
	b.MarkDone()
	if Equal(a, b) {
		t.Fatal("expected done flag to break equality")
	}
	d, _ := NewDeadline("same", "friday")
	if Equal(a, d) {
		t.Fatal("expected different variants to differ")
	}
}

func TestConstructorsRejectReservedCharacters(t *testing.T) {
	tests := []struct {
		name string
		make func() (Task, error)
	}{
		{"todo separator", func() (Task, error) { return NewTodo("buy milk | eggs") }},
		{"todo bare pipe", func() (Task, error) { return NewTodo("milk |") }},
		{"todo newline", func() (Task, error) { return NewTodo("a\nT | 1 | injected") }},
		{"todo carriage return", func() (Task, error) { return NewTodo("a\rb") }},
		{"deadline by separator", func() (Task, error) { return NewDeadline("report", "mon | tue") }},
		{"deadline description newline", func() (Task, error) { return NewDeadline("re\nport", "mon") }},
		{"event from separator", func() (Task, error) { return NewEvent("sync", "Mon | 2pm", "3pm") }},
		{"event to newline", func() (Task, error) { return NewEvent("sync", "Mon", "3pm\nE | 0 | x | y | z") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.make()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !errors.Is(err, ErrReservedCharacter) {
				t.Errorf("expected ErrReservedCharacter, got %v", err)
			}
			if task != nil && !reflect.ValueOf(task).IsNil() {
				t.Errorf("expected no task, got %v", task)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	event, err := NewEvent("team sync", "Mon 2pm", "Mon 3pm")
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	c := Clone(event)
	if !Equal(c, event) {
		t.Fatalf("clone %s differs from %s", c, event)
	}
	c.MarkDone()
	if event.IsDone() {
		t.Error("marking the clone changed the original")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
