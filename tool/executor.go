package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xeipuuv/gojsonschema"
)

// Invocation is one model-issued tool call. It is consumed once and never
// persisted beyond the request.
type Invocation struct {
	Tool         string
	RawArguments json.RawMessage
	Caller       Identity
}

// Result is the uniform envelope every tool call produces. Handlers never
// leak errors or panics past the executor: every failure becomes
// {Success: false, Error: reason} so the model can recover conversationally.
type Result struct {
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"errorMessage,omitempty"`
}

func failure(format string, a ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, a...)}
}

type ExecutorOptions struct {
	Metrics *prometheus.Registry
}

type ExecutorOption func(*ExecutorOptions)

func WithMetrics(metrics *prometheus.Registry) ExecutorOption {
	return func(o *ExecutorOptions) {
		o.Metrics = metrics
	}
}

// Executor validates and dispatches invocations against a registry.
type Executor struct {
	registry   *Registry
	executions *prometheus.CounterVec
}

func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	options := &ExecutorOptions{
		Metrics: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(options)
	}

	executions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tool_executions_total",
		Help: "Tool invocations by tool name and outcome.",
	}, []string{"tool", "outcome"})
	options.Metrics.MustRegister(executions)

	return &Executor{
		registry:   registry,
		executions: executions,
	}
}

// Execute runs one invocation to completion. It never returns an error;
// all failure modes are folded into the result envelope.
func (e *Executor) Execute(ctx context.Context, invocation Invocation) Result {
	t, err := e.registry.Resolve(invocation.Tool)
	if err != nil {
		e.executions.WithLabelValues(invocation.Tool, "unknown").Inc()
		return failure("unknown tool: %s", invocation.Tool)
	}

	args := invocation.RawArguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	if err := validate(t.Contract.Name, t.Contract.InputSchema, args); err != nil {
		e.executions.WithLabelValues(invocation.Tool, "invalid").Inc()
		return failure("%s", err.Error())
	}

	payload, err := e.run(ctx, t, invocation.Caller, args)
	if err != nil {
		e.executions.WithLabelValues(invocation.Tool, "failed").Inc()
		return failure("%s", err.Error())
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		e.executions.WithLabelValues(invocation.Tool, "failed").Inc()
		return failure("tool %s returned an unencodable payload", invocation.Tool)
	}

	if err := validate(t.Contract.Name, t.Contract.OutputSchema, raw); err != nil {
		// A handler violating its own output schema is a bug in the
		// handler; surface it as a failure instead of crashing.
		slog.ErrorContext(ctx, "tool returned malformed payload", "tool", invocation.Tool, "error", err)
		e.executions.WithLabelValues(invocation.Tool, "failed").Inc()
		return failure("tool %s returned a malformed payload", invocation.Tool)
	}

	e.executions.WithLabelValues(invocation.Tool, "ok").Inc()
	return Result{Success: true, Payload: raw}
}

// run invokes the handler with panic containment. A panicking handler must
// not take down the gateway request.
func (e *Executor) run(ctx context.Context, t Tool, caller Identity, args json.RawMessage) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "tool handler panicked", "tool", t.Contract.Name, "panic", r)
			err = fmt.Errorf("tool %s failed", t.Contract.Name)
		}
	}()
	return t.Handler(ctx, caller, args)
}

func validate(toolName string, schema, document json.RawMessage) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validate %s: %w", toolName, err)
	}
	if result.Valid() {
		return nil
	}

	reasons := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	return &ValidationError{Tool: toolName, Reasons: reasons}
}
