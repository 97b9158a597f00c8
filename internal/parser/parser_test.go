package parser

import (
	"errors"
	"testing"

	"github.com/hiroki-koketsu/quokka/internal/model"
)

func TestParseAddCommands(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    CommandKind
		display string
	}{
		{"todo", "todo read book", AddTodo, "[T][ ] read book"},
		{"todo upper case keyword", "TODO Read Book", AddTodo, "[T][ ] Read Book"},
		{"todo extra spaces", "  todo    read book  ", AddTodo, "[T][ ] read book"},
		{"deadline", "deadline submit report /by 2024-12-01", AddDeadline, "[D][ ] submit report (by: 2024-12-01)"},
		{"deadline mixed case", "Deadline return book /by Sunday", AddDeadline, "[D][ ] return book (by: Sunday)"},
		{"event", "event team sync /from Mon 2pm /to Mon 3pm", AddEvent, "[E][ ] team sync (from: Mon 2pm to: Mon 3pm)"},
		{"deadline first occurrence split", "deadline a /by b /by c", AddDeadline, "[D][ ] a (by: b /by c)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.line, err)
			}
			if cmd.Kind != tt.kind {
				t.Fatalf("Kind = %s, want %s", cmd.Kind, tt.kind)
			}
			if got := model.Display(cmd.Task); got != tt.display {
				t.Errorf("Display = %q, want %q", got, tt.display)
			}
		})
	}
}

func TestParseDeadlineFields(t *testing.T) {
	cmd, err := Parse("deadline submit report /by 2024-12-01")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	d, ok := cmd.Task.(*model.Deadline)
	if !ok {
		t.Fatalf("expected *model.Deadline, got %T", cmd.Task)
	}
	if d.Description() != "submit report" || d.By != "2024-12-01" {
		t.Errorf("got description %q by %q", d.Description(), d.By)
	}
}

func TestParseIndexCommands(t *testing.T) {
	tests := []struct {
		line  string
		kind  CommandKind
		index int
	}{
		{"mark 1", Mark, 1},
		{"MARK 3", Mark, 3},
		{"unmark 2", Unmark, 2},
		{"delete 10", Delete, 10},
		{"mark 5", Mark, 5},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.line)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.line, err)
		}
		if cmd.Kind != tt.kind || cmd.Index != tt.index {
			t.Errorf("Parse(%q) = {%s %d}, want {%s %d}", tt.line, cmd.Kind, cmd.Index, tt.kind, tt.index)
		}
	}
}

func TestParseSimpleCommands(t *testing.T) {
	tests := []struct {
		line string
		kind CommandKind
	}{
		{"list", List},
		{"LIST", List},
		{"bye", Exit},
		{"Bye", Exit},
		{"hello there", Unrecognized},
		{"", Unrecognized},
		{"todoread book", Unrecognized},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.line)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.line, err)
		}
		if cmd.Kind != tt.kind {
			t.Errorf("Parse(%q).Kind = %s, want %s", tt.line, cmd.Kind, tt.kind)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    ErrorKind
		message string
	}{
		{"todo without description", "todo", KindValidation, "description required"},
		{"todo blank description", "todo    ", KindValidation, "description required"},
		{"deadline without by", "deadline submit report", KindValidation, "invalid deadline format, use: deadline <description> /by <when>"},
		{"deadline empty description", "deadline /by tomorrow", KindValidation, "both description and deadline required"},
		{"deadline empty by", "deadline report /by   ", KindValidation, "both description and deadline required"},
		{"event without from", "event party /to 5pm", KindValidation, "invalid event format, use: event <description> /from <start> /to <end>"},
		{"event without to", "event party /from 4pm", KindValidation, "invalid event format, use: event <description> /from <start> /to <end>"},
		{"event empty start", "event party /from /to 5pm", KindValidation, "description, start and end required"},
		{"todo with separator", "todo buy milk | eggs", KindValidation, `task fields must not contain "|" or line breaks`},
		{"todo with embedded record", "todo a\nT | 1 | injected", KindValidation, `task fields must not contain "|" or line breaks`},
		{"deadline by with separator", "deadline report /by mon | tue", KindValidation, `task fields must not contain "|" or line breaks`},
		{"event end with newline", "event sync /from 2pm /to 3pm\rx", KindValidation, `task fields must not contain "|" or line breaks`},
		{"mark without index", "mark", KindIndex, "task index required"},
		{"mark non numeric", "mark one", KindIndex, "invalid index format"},
		{"unmark zero", "unmark 0", KindIndex, "invalid index format"},
		{"delete negative", "delete -2", KindIndex, "invalid index format"},
		{"delete two tokens", "delete 1 2", KindIndex, "invalid index format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if pe.Kind != tt.kind {
				t.Errorf("Kind = %d, want %d", pe.Kind, tt.kind)
			}
			if pe.Message != tt.message {
				t.Errorf("Message = %q, want %q", pe.Message, tt.message)
			}
		})
	}
}

func TestParseErrorUnwrapsToModelSentinels(t *testing.T) {
	_, err := Parse("todo")
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	_, err = Parse("mark x")
	if !errors.Is(err, model.ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
}
