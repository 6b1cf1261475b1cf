package dialogue

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"

	"github.com/talevault/talevault/pkg/telemetry"
	"github.com/talevault/talevault/pkg/vars"
)

// instrumentedStore decorates a Store with per-operation latency
// metrics, trace spans and variable-scoped log context. The domain
// counters (reads, writes, conflicts) belong to the builtins; this
// layer owns timing and spans.
type instrumentedStore struct {
	next    Store
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
}

func (s *instrumentedStore) start(ctx context.Context, op, name string) (context.Context, trace.Span, *telemetry.Timer) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.StartStoreSpan(ctx, op, name)
	}
	return ctx, span, telemetry.NewTimer()
}

func (s *instrumentedStore) finish(op string, span trace.Span, timer *telemetry.Timer, err error) {
	if s.metrics != nil {
		s.metrics.RecordStoreOp(op, timer.Duration())
	}
	if span != nil {
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.RecordSuccess(span)
		}
		span.End()
	}
}

func (s *instrumentedStore) TryGetValue(ctx context.Context, name string, kind vars.Kind) (vars.Value, bool, error) {
	ctx, span, timer := s.start(ctx, "get", name)
	value, found, err := s.next.TryGetValue(ctx, name, kind)
	s.finish("get", span, timer, err)
	if err != nil {
		s.logger.WithVariable(name).WithError(err).Error("Store read failed")
	}
	return value, found, err
}

func (s *instrumentedStore) SetValue(ctx context.Context, name string, value vars.Value) error {
	ctx, span, timer := s.start(ctx, "set", name)
	err := s.next.SetValue(ctx, name, value)
	if span != nil && errors.Is(err, vars.ErrTypeConflict) {
		telemetry.AddEvent(span, "type_conflict")
	}
	s.finish("set", span, timer, err)
	if err != nil {
		s.logger.WithVariable(name).WithError(err).Warn("Store write rejected")
	}
	return err
}

func (s *instrumentedStore) Contains(ctx context.Context, name string) (bool, error) {
	ctx, span, timer := s.start(ctx, "contains", name)
	found, err := s.next.Contains(ctx, name)
	s.finish("contains", span, timer, err)
	return found, err
}

func (s *instrumentedStore) Clear(ctx context.Context) error {
	ctx, span, timer := s.start(ctx, "clear", "")
	err := s.next.Clear(ctx)
	s.finish("clear", span, timer, err)
	return err
}

func (s *instrumentedStore) GetAllVariables(ctx context.Context) (vars.Snapshot, error) {
	ctx, span, timer := s.start(ctx, "get_all", "")
	snap, err := s.next.GetAllVariables(ctx)
	s.finish("get_all", span, timer, err)
	return snap, err
}
