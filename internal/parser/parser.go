// Package parser turns raw command lines into validated commands.
package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/hiroki-koketsu/quokka/internal/model"
)

// CommandKind identifies what a parsed line asks for.
type CommandKind int

const (
	Unrecognized CommandKind = iota
	AddTodo
	AddDeadline
	AddEvent
	Mark
	Unmark
	Delete
	List
	Exit
)

var kindNames = map[CommandKind]string{
	Unrecognized: "unrecognized",
	AddTodo:      "todo",
	AddDeadline:  "deadline",
	AddEvent:     "event",
	Mark:         "mark",
	Unmark:       "unmark",
	Delete:       "delete",
	List:         "list",
	Exit:         "bye",
}

func (k CommandKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is the outcome of parsing one input line. Task is set for the add
// commands, Index (1-based, not range checked) for mark, unmark and delete.
type Command struct {
	Kind  CommandKind
	Task  model.Task
	Index int
}

// Parse maps one input line to a Command. A malformed line yields a
// *ParseError; an unknown leading keyword yields Unrecognized and no error.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	keyword := leadingToken(line)

	switch strings.ToLower(keyword) {
	case "todo":
		return parseTodo(line)
	case "deadline":
		return parseDeadline(line)
	case "event":
		return parseEvent(line)
	case "mark":
		return parseIndex(Mark, line)
	case "unmark":
		return parseIndex(Unmark, line)
	case "delete":
		return parseIndex(Delete, line)
	case "list":
		return Command{Kind: List}, nil
	case "bye":
		return Command{Kind: Exit}, nil
	}
	return Command{Kind: Unrecognized}, nil
}

func leadingToken(line string) string {
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		return line[:i]
	}
	return line
}

// stripKeyword removes a leading keyword regardless of its case.
func stripKeyword(s, keyword string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(keyword) && strings.EqualFold(s[:len(keyword)], keyword) {
		s = s[len(keyword):]
	}
	return strings.TrimSpace(s)
}

func parseTodo(line string) (Command, error) {
	description := stripKeyword(line, "todo")
	if description == "" {
		return Command{}, validationError(AddTodo, "description required")
	}
	task, err := model.NewTodo(description)
	if err != nil {
		return Command{}, validationError(AddTodo, err.Error())
	}
	return Command{Kind: AddTodo, Task: task}, nil
}

func parseDeadline(line string) (Command, error) {
	parts := strings.SplitN(line, "/by", 2)
	if len(parts) != 2 {
		return Command{}, validationError(AddDeadline, "invalid deadline format, use: deadline <description> /by <when>")
	}
	description := stripKeyword(parts[0], "deadline")
	by := strings.TrimSpace(parts[1])
	if description == "" || by == "" {
		return Command{}, validationError(AddDeadline, "both description and deadline required")
	}
	task, err := model.NewDeadline(description, by)
	if err != nil {
		return Command{}, validationError(AddDeadline, err.Error())
	}
	return Command{Kind: AddDeadline, Task: task}, nil
}

func parseEvent(line string) (Command, error) {
	const usage = "invalid event format, use: event <description> /from <start> /to <end>"
	parts := strings.SplitN(line, "/from", 2)
	if len(parts) != 2 {
		return Command{}, validationError(AddEvent, usage)
	}
	span := strings.SplitN(parts[1], "/to", 2)
	if len(span) != 2 {
		return Command{}, validationError(AddEvent, usage)
	}
	description := stripKeyword(parts[0], "event")
	from := strings.TrimSpace(span[0])
	to := strings.TrimSpace(span[1])
	if description == "" || from == "" || to == "" {
		return Command{}, validationError(AddEvent, "description, start and end required")
	}
	task, err := model.NewEvent(description, from, to)
	if err != nil {
		return Command{}, validationError(AddEvent, err.Error())
	}
	return Command{Kind: AddEvent, Task: task}, nil
}

func parseIndex(kind CommandKind, line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Command{}, indexError(kind, "task index required")
	}
	if len(fields) > 2 {
		return Command{}, indexError(kind, "invalid index format")
	}
	index, err := strconv.Atoi(fields[1])
	if err != nil || index < 1 {
		return Command{}, indexError(kind, "invalid index format")
	}
	return Command{Kind: kind, Index: index}, nil
}
