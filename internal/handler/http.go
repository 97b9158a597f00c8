package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hiroki-koketsu/quokka/internal/model"
	"github.com/hiroki-koketsu/quokka/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TaskHandler exposes the command surface over HTTP.
type TaskHandler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	metrics    *telemetry.Metrics
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(dispatcher *Dispatcher, logger *slog.Logger, metrics *telemetry.Metrics) *TaskHandler {
	return &TaskHandler{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// CommandRequest is the body of POST /commands.
type CommandRequest struct {
	Line string `json:"line"`
}

// CommandResponse is the JSON rendering of a Result.
type CommandResponse struct {
	Kind       ResultKind `json:"kind"`
	Task       string     `json:"task,omitempty"`
	Count      int        `json:"count"`
	Tasks      []string   `json:"tasks,omitempty"`
	Error      string     `json:"error,omitempty"`
	ErrorClass ErrorClass `json:"error_class,omitempty"`
}

func newCommandResponse(res Result) CommandResponse {
	resp := CommandResponse{
		Kind:       res.Kind,
		Count:      res.Count,
		ErrorClass: Classify(res.Err),
	}
	if res.Task != nil {
		resp.Task = model.Display(res.Task)
	}
	if res.Kind == ResultListed {
		resp.Tasks = displayAll(res.Tasks)
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	return resp
}

func displayAll(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = model.Display(t)
	}
	return out
}

// Routes returns the chi router with command and task routes.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/commands", h.Command)
	r.Get("/tasks", h.List)
	r.Post("/save", h.Save)

	return r
}

// Command executes one command line.
func (h *TaskHandler) Command(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		h.recordMetrics(ctx, "POST", "/api/v1/commands", http.StatusBadRequest, start)
		return
	}

	res := h.dispatcher.Execute(ctx, req.Line)
	status := statusFor(res)

	h.respondJSON(w, status, newCommandResponse(res))
	h.recordMetrics(ctx, "POST", "/api/v1/commands", status, start)
}

// List returns the displayed task list.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	res := h.dispatcher.Execute(ctx, "list")
	h.logger.InfoContext(ctx, "tasks listed", slog.Int("count", res.Count))

	h.respondJSON(w, http.StatusOK, newCommandResponse(res))
	h.recordMetrics(ctx, "GET", "/api/v1/tasks", http.StatusOK, start)
}

// Save persists the list without ending the session.
func (h *TaskHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	if err := h.dispatcher.Save(ctx); err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to save tasks")
		h.recordMetrics(ctx, "POST", "/api/v1/save", http.StatusInternalServerError, start)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	h.recordMetrics(ctx, "POST", "/api/v1/save", http.StatusNoContent, start)
}

// Health returns a health check response.
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(res Result) int {
	if res.Kind == ResultUnrecognized {
		return http.StatusUnprocessableEntity
	}
	switch Classify(res.Err) {
	case ClassNone:
		return http.StatusOK
	case ClassValidation, ClassIndex:
		return http.StatusBadRequest
	case ClassCapacity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *TaskHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *TaskHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *TaskHandler) recordMetrics(ctx context.Context, method, route string, status int, start time.Time) {
	if h.metrics == nil {
		return
	}
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	h.metrics.RequestCounter.Add(ctx, 1, attrs)
	h.metrics.RequestDuration.Record(ctx, duration, attrs)
}
