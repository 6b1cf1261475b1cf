package dialogue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/talevault/talevault/pkg/telemetry"
	"github.com/talevault/talevault/pkg/vars"
)

// Store is the variable store surface the runtime consumes.
type Store interface {
	TryGetValue(ctx context.Context, name string, kind vars.Kind) (vars.Value, bool, error)
	SetValue(ctx context.Context, name string, value vars.Value) error
	Clear(ctx context.Context) error
	Contains(ctx context.Context, name string) (bool, error)
	GetAllVariables(ctx context.Context) (vars.Snapshot, error)
}

// Runtime executes dialogue scripts against a variable store. The
// runtime owns the store: Close releases it.
type Runtime struct {
	store   Store
	closer  func() error
	timeout time.Duration
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout bounds each script run. Zero means the default 30s.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the runtime logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithMetrics sets the metrics collector for builtin and run recording.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// WithTracer sets the tracer for script run spans.
func WithTracer(t *telemetry.Tracer) Option {
	return func(r *Runtime) { r.tracer = t }
}

// WithCloser registers the function Close calls to release the store.
func WithCloser(fn func() error) Option {
	return func(r *Runtime) { r.closer = fn }
}

// NewRuntime creates a script runtime over the given store.
func NewRuntime(store Store, opts ...Option) *Runtime {
	r := &Runtime{
		store:   store,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		logger, err := telemetry.NewLogger(telemetry.DefaultConfig().Logging)
		if err != nil {
			logger = telemetry.FromContext(context.Background())
		}
		r.logger = logger.NewComponentLogger("dialogue")
	}
	if r.metrics != nil || r.tracer != nil {
		r.store = &instrumentedStore{
			next:    r.store,
			logger:  r.logger,
			metrics: r.metrics,
			tracer:  r.tracer,
		}
	}
	return r
}

// Close releases the store owned by the runtime.
func (r *Runtime) Close() error {
	if r.closer != nil {
		return r.closer()
	}
	return nil
}

// Result is the outcome of a single script run.
type Result struct {
	// SessionID identifies the run in logs and traces.
	SessionID string

	// Globals are the script's exported top-level bindings.
	Globals map[string]interface{}

	// Duration is the wall-clock execution time.
	Duration time.Duration
}

// RunFile loads and executes a script file.
func (r *Runtime) RunFile(ctx context.Context, path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return r.Run(ctx, path, string(src))
}

// Run executes script source against the store. Each run gets a fresh
// session id and is bounded by the runtime timeout. The store builtins
// operate on live data: writes are visible immediately, including to a
// failed run's earlier statements (no rollback across a script).
func (r *Runtime) Run(ctx context.Context, filename, src string) (*Result, error) {
	sessionID := uuid.NewString()
	logger := r.logger.WithSessionID(sessionID).WithScript(filename)

	if r.tracer != nil {
		spanCtx, span := r.tracer.StartScriptSpan(ctx, sessionID, filename)
		ctx = spanCtx
		defer span.End()
		if id := telemetry.TraceID(ctx); id != "" {
			logger = logger.WithField("trace_id", id)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	logger.Debug("Running dialogue script")
	timer := telemetry.NewTimer()

	resultCh := make(chan starlark.StringDict, 1)
	errCh := make(chan error, 1)

	go func() {
		globals, err := r.execute(runCtx, sessionID, filename, src)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- globals
	}()

	var (
		globals starlark.StringDict
		runErr  error
	)
	select {
	case <-runCtx.Done():
		runErr = fmt.Errorf("script execution timeout after %v", r.timeout)
	case runErr = <-errCh:
	case globals = <-resultCh:
	}

	duration := timer.Duration()
	status := "succeeded"
	if runErr != nil {
		status = "failed"
	}
	if r.metrics != nil {
		r.metrics.RecordScriptRun(status, duration)
	}
	if runErr != nil {
		if r.tracer != nil {
			telemetry.RecordError(telemetry.SpanFromContext(ctx), runErr)
		}
		logger.WithError(runErr).Error("Script run failed")
		return nil, runErr
	}

	out := make(map[string]interface{}, len(globals))
	for name, val := range globals {
		// Skip internal bindings (starting with _)
		if len(name) > 0 && name[0] == '_' {
			continue
		}
		out[name] = fromStarlarkGlobal(val)
	}

	logger.WithField("duration", duration.String()).Info("Script run complete")
	return &Result{
		SessionID: sessionID,
		Globals:   out,
		Duration:  duration,
	}, nil
}

// execute performs the actual Starlark evaluation synchronously.
func (r *Runtime) execute(ctx context.Context, sessionID, filename, src string) (starlark.StringDict, error) {
	logger := r.logger.WithSessionID(sessionID)

	thread := &starlark.Thread{
		Name: "talevault/" + sessionID,
		Print: func(_ *starlark.Thread, msg string) {
			logger.WithField("print", msg).Info("Script output")
		},
	}

	// Stop the interpreter when the run context expires so a runaway
	// script does not keep a goroutine spinning after timeout.
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel("run cancelled")
	})
	defer stop()

	predeclared := starlark.StringDict{
		"struct":  starlarkstruct.Default,
		"get":     starlark.NewBuiltin("get", r.builtinGet(ctx)),
		"set":     starlark.NewBuiltin("set", r.builtinSet(ctx)),
		"has":     starlark.NewBuiltin("has", r.builtinHas(ctx)),
		"clear":   starlark.NewBuiltin("clear", r.builtinClear(ctx)),
		"vars":    starlark.NewBuiltin("vars", r.builtinVars(ctx)),
		"session": starlark.String(sessionID),
	}

	globals, err := starlark.ExecFile(thread, filename, src, predeclared)
	if err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}

	return globals, nil
}

// builtinFn is the signature starlark.NewBuiltin expects.
type builtinFn = func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)

// builtinGet implements get(name, kind="any").
func (r *Runtime) builtinGet(ctx context.Context) builtinFn {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name, kindName string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "kind?", &kindName); err != nil {
			return nil, err
		}

		kind, err := parseKind(kindName)
		if err != nil {
			return nil, err
		}

		value, found, err := r.store.TryGetValue(ctx, name, kind)
		if r.metrics != nil {
			r.metrics.RecordVariableRead(string(kind), found)
		}
		if err != nil {
			return nil, err
		}
		if !found {
			return starlark.None, nil
		}
		return toStarlark(value), nil
	}
}

// builtinSet implements set(name, value).
func (r *Runtime) builtinSet(ctx context.Context) builtinFn {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		var raw starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "value", &raw); err != nil {
			return nil, err
		}

		value, err := fromStarlark(raw)
		if err != nil {
			return nil, err
		}

		if err := r.store.SetValue(ctx, name, value); err != nil {
			if r.metrics != nil {
				if errors.Is(err, vars.ErrTypeConflict) {
					r.metrics.RecordTypeConflict(string(value.Kind()))
				}
				r.metrics.RecordError(string(vars.ClassOf(err)))
			}
			return nil, err
		}

		if r.metrics != nil {
			r.metrics.RecordVariableWrite(string(value.Kind()))
		}
		return starlark.None, nil
	}
}

// builtinHas implements has(name).
func (r *Runtime) builtinHas(ctx context.Context) builtinFn {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
			return nil, err
		}

		found, err := r.store.Contains(ctx, name)
		if err != nil {
			return nil, err
		}
		return starlark.Bool(found), nil
	}
}

// builtinClear implements clear().
func (r *Runtime) builtinClear(ctx context.Context) builtinFn {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
			return nil, err
		}

		if err := r.store.Clear(ctx); err != nil {
			return nil, err
		}
		if r.metrics != nil {
			r.metrics.RecordStoreClear()
		}
		return starlark.None, nil
	}
}

// builtinVars implements vars(), returning the full snapshot as a dict.
func (r *Runtime) builtinVars(ctx context.Context) builtinFn {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
			return nil, err
		}

		snap, err := r.store.GetAllVariables(ctx)
		if err != nil {
			return nil, err
		}
		return snapshotToDict(snap)
	}
}
