package model

import (
	"fmt"
	"strings"
)

// Kind is the one-letter tag identifying a task variant.
type Kind string

const (
	KindTodo     Kind = "T"
	KindDeadline Kind = "D"
	KindEvent    Kind = "E"
)

// Task is a todo, deadline or event. The set of implementations is closed:
// only Todo, Deadline and Event satisfy it.
type Task interface {
	Kind() Kind
	Description() string
	IsDone() bool
	MarkDone()
	MarkNotDone()
	String() string

	fields() []string
	clone() Task
}

// base holds the fields shared by every variant.
type base struct {
	description string
	done        bool
}

func (b *base) Description() string { return b.description }
func (b *base) IsDone() bool        { return b.done }
func (b *base) MarkDone()           { b.done = true }
func (b *base) MarkNotDone()        { b.done = false }

func (b *base) statusIcon() string {
	if b.done {
		return "X"
	}
	return " "
}

// checkFields rejects values that would split or add records once
// serialized.
func checkFields(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "|\r\n") {
			return ErrReservedCharacter
		}
	}
	return nil
}

// Todo is a task with only a description.
type Todo struct {
	base
}

// NewTodo creates a Todo that is not yet done.
func NewTodo(description string) (*Todo, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if err := checkFields(description); err != nil {
		return nil, err
	}
	return &Todo{base: base{description: description}}, nil
}

func (t *Todo) Kind() Kind { return KindTodo }

func (t *Todo) String() string {
	return fmt.Sprintf("[%s][%s] %s", KindTodo, t.statusIcon(), t.description)
}

func (t *Todo) fields() []string { return nil }

func (t *Todo) clone() Task {
	c := *t
	return &c
}

// Deadline is a task that must be done by a point in time.
type Deadline struct {
	base
	By string
}

// NewDeadline creates a Deadline. The by token is kept verbatim.
func NewDeadline(description, by string) (*Deadline, error) {
	description = strings.TrimSpace(description)
	by = strings.TrimSpace(by)
	if description == "" || by == "" {
		return nil, &ValidationError{Message: "both description and deadline required"}
	}
	if err := checkFields(description, by); err != nil {
		return nil, err
	}
	return &Deadline{base: base{description: description}, By: by}, nil
}

func (d *Deadline) Kind() Kind { return KindDeadline }

func (d *Deadline) String() string {
	return fmt.Sprintf("[%s][%s] %s (by: %s)", KindDeadline, d.statusIcon(), d.description, d.By)
}

func (d *Deadline) fields() []string { return []string{d.By} }

func (d *Deadline) clone() Task {
	c := *d
	return &c
}

// Event is a task that spans a start and an end.
type Event struct {
	base
	From string
	To   string
}

// NewEvent creates an Event. From and To are opaque tokens.
func NewEvent(description, from, to string) (*Event, error) {
	description = strings.TrimSpace(description)
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if description == "" || from == "" || to == "" {
		return nil, &ValidationError{Message: "description, start and end required"}
	}
	if err := checkFields(description, from, to); err != nil {
		return nil, err
	}
	return &Event{base: base{description: description}, From: from, To: to}, nil
}

func (e *Event) Kind() Kind { return KindEvent }

func (e *Event) String() string {
	return fmt.Sprintf("[%s][%s] %s (from: %s to: %s)", KindEvent, e.statusIcon(), e.description, e.From, e.To)
}

func (e *Event) fields() []string { return []string{e.From, e.To} }

func (e *Event) clone() Task {
	c := *e
	return &c
}

// Clone returns an independent copy of t. Changing the copy's status leaves
// t untouched.
func Clone(t Task) Task {
	if t == nil {
		return nil
	}
	return t.clone()
}

// Display returns the human-readable rendering of a task.
func Display(t Task) string {
	return t.String()
}

// Equal reports whether two tasks have the same variant and field values.
func Equal(a, b Task) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() || a.Description() != b.Description() || a.IsDone() != b.IsDone() {
		return false
	}
	fa, fb := a.fields(), b.fields()
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if fa[i] != fb[i] {
			return false
		}
	}
	return true
}
