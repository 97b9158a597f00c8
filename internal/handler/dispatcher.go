package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hiroki-koketsu/quokka/internal/model"
	"github.com/hiroki-koketsu/quokka/internal/parser"
	"github.com/hiroki-koketsu/quokka/internal/repository"
	"github.com/hiroki-koketsu/quokka/internal/storage"
	"github.com/hiroki-koketsu/quokka/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/quokka/internal/handler")

// ErrStoreNotLoaded is returned by Save when the store could not be read at
// startup. The file is left as it is rather than replaced by a partial list.
var ErrStoreNotLoaded = errors.New("task store was not fully loaded, refusing to overwrite it")

// ResultKind identifies the outcome of one command.
type ResultKind string

const (
	ResultAdded        ResultKind = "added"
	ResultMarked       ResultKind = "marked"
	ResultUnmarked     ResultKind = "unmarked"
	ResultDeleted      ResultKind = "deleted"
	ResultListed       ResultKind = "listed"
	ResultExit         ResultKind = "exit"
	ResultUnrecognized ResultKind = "unrecognized"
	ResultFailed       ResultKind = "failed"
)

// Result is a rendering-ready outcome of Execute. Task and Count describe the
// affected task and the list size afterwards; Tasks is set for listings.
// Err is set when the command failed, or when the save on exit failed.
type Result struct {
	Kind  ResultKind
	Task  model.Task
	Count int
	Tasks []model.Task
	Err   error
}

// ErrorClass names the category of a command failure.
type ErrorClass string

const (
	ClassNone          ErrorClass = ""
	ClassValidation    ErrorClass = "validation"
	ClassIndex         ErrorClass = "index"
	ClassCapacity      ErrorClass = "capacity"
	ClassCorruptRecord ErrorClass = "corrupt_record"
	ClassIO            ErrorClass = "io"
	ClassInternal      ErrorClass = "internal"
)

// Classify maps an error returned by the tracker onto its ErrorClass.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, repository.ErrCapacityExceeded):
		return ClassCapacity
	case errors.Is(err, model.ErrInvalidIndex):
		return ClassIndex
	case errors.Is(err, model.ErrValidation):
		return ClassValidation
	case errors.Is(err, model.ErrCorruptRecord):
		return ClassCorruptRecord
	case errors.Is(err, storage.ErrIO):
		return ClassIO
	default:
		return ClassInternal
	}
}

// Dispatcher applies parsed commands to a task list and persists it on exit.
type Dispatcher struct {
	list    *repository.TaskList
	store   *storage.Store
	logger  *slog.Logger
	metrics *telemetry.Metrics

	saveMu  sync.Mutex
	loadErr error
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(list *repository.TaskList, store *storage.Store, logger *slog.Logger, metrics *telemetry.Metrics) *Dispatcher {
	return &Dispatcher{
		list:    list,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Load fills the task list from the store. Skipped lines are logged and
// returned; they never abort the load. When the store cannot be read, the
// tasks read before the failure are kept and later saves are refused.
func (d *Dispatcher) Load(ctx context.Context) ([]storage.LineFailure, error) {
	ctx, span := tracer.Start(ctx, "Dispatcher.Load")
	defer span.End()

	tasks, failures, err := d.store.Load(ctx)
	for _, f := range failures {
		d.logger.WarnContext(ctx, "skipping task record",
			slog.Int("line", f.Line),
			slog.String("reason", f.Reason),
		)
	}
	d.list.Replace(tasks)

	d.saveMu.Lock()
	d.loadErr = err
	d.saveMu.Unlock()

	span.SetAttributes(
		attribute.Int("task.count", len(tasks)),
		attribute.Int("store.skipped_lines", len(failures)),
	)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to load tasks",
			slog.String("path", d.store.Path()),
			slog.Int("kept", len(tasks)),
			slog.Any("error", err),
		)
		return failures, err
	}
	d.logger.InfoContext(ctx, "tasks loaded", slog.Int("count", len(tasks)), slog.String("path", d.store.Path()))
	return failures, nil
}

// Save writes the current list to the store. It fails with
// ErrStoreNotLoaded if the last Load could not read the store.
func (d *Dispatcher) Save(ctx context.Context) error {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	if d.loadErr != nil {
		err := fmt.Errorf("%w: %w", ErrStoreNotLoaded, d.loadErr)
		d.logger.ErrorContext(ctx, "not saving tasks", slog.String("path", d.store.Path()), slog.Any("error", err))
		return err
	}

	tasks := d.list.All(ctx)
	if err := d.store.Save(ctx, tasks); err != nil {
		d.logger.ErrorContext(ctx, "failed to save tasks", slog.String("path", d.store.Path()), slog.Any("error", err))
		return err
	}
	d.logger.InfoContext(ctx, "tasks saved", slog.Int("count", len(tasks)), slog.String("path", d.store.Path()))
	return nil
}

// Execute parses one input line and applies it. It never panics on user
// input; every failure is reported through Result.Err.
func (d *Dispatcher) Execute(ctx context.Context, line string) Result {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "Dispatcher.Execute")
	defer span.End()

	cmd, err := parser.Parse(line)
	if err != nil {
		d.logger.WarnContext(ctx, "rejected command", slog.String("line", line), slog.Any("error", err))
		res := Result{Kind: ResultFailed, Err: err}
		kind := cmd.Kind
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			kind = pe.Command
		}
		d.record(ctx, kind, res, start)
		return res
	}
	span.SetAttributes(attribute.String("command", cmd.Kind.String()))

	res := d.apply(ctx, cmd)
	if res.Err != nil {
		d.logger.WarnContext(ctx, "command failed",
			slog.String("command", cmd.Kind.String()),
			slog.String("class", string(Classify(res.Err))),
			slog.Any("error", res.Err),
		)
	} else {
		d.logger.DebugContext(ctx, "command applied",
			slog.String("command", cmd.Kind.String()),
			slog.Int("count", res.Count),
		)
	}
	d.record(ctx, cmd.Kind, res, start)
	return res
}

func (d *Dispatcher) apply(ctx context.Context, cmd parser.Command) Result {
	switch cmd.Kind {
	case parser.AddTodo, parser.AddDeadline, parser.AddEvent:
		added, err := d.list.Add(ctx, cmd.Task)
		if err != nil {
			return Result{Kind: ResultFailed, Err: err}
		}
		return Result{Kind: ResultAdded, Task: added.Task, Count: added.Count}

	case parser.Mark, parser.Unmark:
		done := cmd.Kind == parser.Mark
		task, err := d.list.SetStatus(ctx, cmd.Index, done)
		if err != nil {
			return Result{Kind: ResultFailed, Err: err}
		}
		kind := ResultUnmarked
		if done {
			kind = ResultMarked
		}
		return Result{Kind: kind, Task: task, Count: int(d.list.Count())}

	case parser.Delete:
		removed, err := d.list.Delete(ctx, cmd.Index)
		if err != nil {
			return Result{Kind: ResultFailed, Err: err}
		}
		return Result{Kind: ResultDeleted, Task: removed.Task, Count: removed.Count}

	case parser.List:
		tasks := d.list.All(ctx)
		return Result{Kind: ResultListed, Tasks: tasks, Count: len(tasks)}

	case parser.Exit:
		err := d.Save(ctx)
		return Result{Kind: ResultExit, Count: int(d.list.Count()), Err: err}
	}
	return Result{Kind: ResultUnrecognized}
}

func (d *Dispatcher) record(ctx context.Context, kind parser.CommandKind, res Result, start time.Time) {
	if d.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("command", kind.String()),
		attribute.String("result", string(res.Kind)),
		attribute.String("error.class", string(Classify(res.Err))),
	)
	d.metrics.CommandCounter.Add(ctx, 1, attrs)
	d.metrics.CommandDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}
