// Package console runs the interactive read loop and renders command results.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hiroki-koketsu/quokka/internal/handler"
	"github.com/hiroki-koketsu/quokka/internal/model"
	"github.com/hiroki-koketsu/quokka/internal/parser"
	"github.com/hiroki-koketsu/quokka/internal/storage"
)

const indent = "    "

// Executor runs one command line.
type Executor interface {
	Execute(ctx context.Context, line string) handler.Result
}

// Console reads commands from in and writes responses to out.
type Console struct {
	exec Executor
	in   io.Reader
	out  io.Writer
	name string
}

// New creates a Console. name is used in the greeting.
func New(exec Executor, in io.Reader, out io.Writer, name string) *Console {
	return &Console{exec: exec, in: in, out: out, name: name}
}

// LoadReport summarises the startup load of the task file.
type LoadReport struct {
	FileExists bool
	Count      int
	Failures   []storage.LineFailure
	Err        error
}

// ReportLoad prints the outcome of loading the task file at startup.
func (c *Console) ReportLoad(r LoadReport) {
	switch {
	case r.Err != nil:
		c.println("Could not read the data file: " + r.Err.Error())
		c.println(fmt.Sprintf("Continuing with the %d task(s) read so far. Changes will not be saved.", r.Count))
	case !r.FileExists:
		c.println("No existing data file found. Starting with empty task list.")
	}
	for _, f := range r.Failures {
		c.println(fmt.Sprintf("Warning: skipped entry on line %d (%s)", f.Line, f.Reason))
	}
}

// Run greets the user and processes lines until "bye" or end of input.
// End of input is treated as "bye" so the list is still saved.
func (c *Console) Run(ctx context.Context) error {
	c.println("Hello! I'm " + c.name)
	c.println("What can I do for you?")

	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := "bye"
		if scanner.Scan() {
			line = strings.TrimSpace(scanner.Text())
		} else if err := scanner.Err(); err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			continue
		}

		res := c.exec.Execute(ctx, line)
		c.Render(res)
		if res.Kind == handler.ResultExit {
			return nil
		}
	}
}

// Render writes the response for one result.
func (c *Console) Render(res handler.Result) {
	switch res.Kind {
	case handler.ResultAdded:
		c.println(indent + "Got it. I've added this task:")
		c.println(indent + "  " + model.Display(res.Task))
		c.println(indent + fmt.Sprintf("Now you have %d %s in the list.", res.Count, plural(res.Count)))
	case handler.ResultMarked:
		c.println(indent + "Nice! I've marked this task as done:")
		c.println(indent + "  " + model.Display(res.Task))
	case handler.ResultUnmarked:
		c.println(indent + "OK, I've marked this task as not done yet:")
		c.println(indent + "  " + model.Display(res.Task))
	case handler.ResultDeleted:
		c.println(indent + "Noted. I've removed this task:")
		c.println(indent + "  " + model.Display(res.Task))
		c.println(indent + fmt.Sprintf("Now you have %d %s in the list.", res.Count, plural(res.Count)))
	case handler.ResultListed:
		if len(res.Tasks) == 0 {
			c.println(indent + "No tasks added yet.")
			return
		}
		c.println(indent + "Here are the tasks in your list:")
		for i, t := range res.Tasks {
			c.println(fmt.Sprintf("%s%d. %s", indent, i+1, model.Display(t)))
		}
	case handler.ResultExit:
		if res.Err != nil {
			c.println(indent + "Error: could not save your tasks: " + res.Err.Error())
		}
		c.println(indent + "Bye. Hope to see you again soon!")
	case handler.ResultUnrecognized:
		c.println(indent + "I'm sorry, I don't understand that command.")
	case handler.ResultFailed:
		c.println(indent + "Error: " + errorMessage(res.Err))
	}
}

func errorMessage(err error) string {
	if handler.Classify(err) == handler.ClassCapacity {
		return "Sorry, the task list is full. You cannot add more tasks."
	}
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}

func plural(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}
