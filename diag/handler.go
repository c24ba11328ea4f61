package diag

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrRunStarted is returned when the policy is changed after the run has begun.
var ErrRunStarted = errors.New("the run has already started")

type HandlerOption func(h *Handler)

func ContinueOnError(enabled bool) HandlerOption {
	return func(h *Handler) {
		h.continueOnError = enabled
	}
}

func Logger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Handler is an append-only sink of diagnostics plus the continue-on-error policy of a run.
type Handler struct {
	mu              sync.Mutex
	runID           string
	continueOnError bool
	started         bool
	diags           []Diagnostic
	logger          *slog.Logger
}

func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		runID:  uuid.NewString(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(slog.String("run", h.runID))
	return h
}

func (h *Handler) RunID() string {
	return h.runID
}

// SetContinueOnError sets the policy. It can be called only before the run begins.
func (h *Handler) SetContinueOnError(enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return fmt.Errorf("cannot change continue-on-error: %w", ErrRunStarted)
	}
	h.continueOnError = enabled
	return nil
}

func (h *Handler) ContinueOnError() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.continueOnError
}

// Begin marks the run as started. Recording a diagnostic also does.
func (h *Handler) Begin() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		h.started = true
		h.logger.Debug("run started", slog.Bool("continue_on_error", h.continueOnError))
	}
}

// Record appends a copy of the diagnostic. Negative coordinates are stored as 0 (unknown).
func (h *Handler) Record(d Diagnostic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.started = true

	d = d.clone()
	if d.Position.Row < 0 {
		d.Position.Row = 0
	}
	if d.Position.Col < 0 {
		d.Position.Col = 0
	}
	h.diags = append(h.diags, d)

	h.logger.Debug("diagnostic recorded",
		slog.String("stage", d.Stage.String()),
		slog.String("severity", d.Severity.String()),
		slog.String("message", d.Message),
		slog.Int("row", d.Position.Row),
		slog.Int("col", d.Position.Col))
}

// Lexical records a lexical error.
func (h *Handler) Lexical(pos Position, lexeme string, format string, args ...interface{}) {
	h.Record(Diagnostic{
		Stage:    StageLexical,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
		Lexeme:   lexeme,
	})
}

// LexicalWarning records a lexical problem that still yields a usable token, such as a literal whose
// value cannot be computed.
func (h *Handler) LexicalWarning(pos Position, lexeme string, format string, args ...interface{}) {
	h.Record(Diagnostic{
		Stage:    StageLexical,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
		Lexeme:   lexeme,
	})
}

// Syntactic records a syntax error.
func (h *Handler) Syntactic(pos Position, lexeme string, expected []string, format string, args ...interface{}) {
	h.Record(Diagnostic{
		Stage:    StageSyntactic,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
		Lexeme:   lexeme,
		Expected: expected,
	})
}

// Diagnostics returns copies of the recorded diagnostics in detection order.
func (h *Handler) Diagnostics() []Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.snapshot()
}

func (h *Handler) snapshot() []Diagnostic {
	ds := make([]Diagnostic, len(h.diags))
	for i, d := range h.diags {
		ds[i] = d.clone()
	}
	return ds
}

func (h *Handler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.diags)
}

func (h *Handler) CountByStage(stage Stage) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, d := range h.diags {
		if d.Stage == stage {
			n++
		}
	}
	return n
}

// Summary builds a fresh view over the diagnostics recorded so far.
func (h *Handler) Summary() *Summary {
	h.mu.Lock()
	defer h.mu.Unlock()

	return newSummary(h.runID, h.snapshot())
}
