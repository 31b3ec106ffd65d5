// Package pipeline drives an operation through validate, execute and
// normalize stages and folds every outcome into an Envelope.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sunbird/internal/domain"
	"github.com/kailas-cloud/sunbird/internal/logger"
	"github.com/kailas-cloud/sunbird/internal/metrics"
)

// State is a position in the pipeline state machine.
type State string

// Pipeline states.
const (
	StateValidating  State = "validating"
	StateExecuting   State = "executing"
	StateNormalizing State = "normalizing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Processor implements the three stages of one operation.
// Validate must not perform I/O. Execute is the only stage that talks to the backend.
type Processor[Req, Raw, Resp any] interface {
	Validate(params map[string]any) (Req, error)
	Execute(ctx context.Context, req Req) (Raw, error)
	Normalize(raw Raw) (Resp, error)
}

// Envelope is the uniform operation response.
type Envelope[T any] struct {
	Success   bool   `json:"success"`
	Data      *T     `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`

	// FailedAt is the stage that produced the error; empty on success.
	FailedAt State `json:"-"`
}

// Info names an invocation for logs and metrics.
type Info struct {
	Operation string
	Source    string
}

// Run executes p for params. It never returns an error and never panics;
// failures in any stage become an unsuccessful Envelope.
func Run[Req, Raw, Resp any](
	ctx context.Context, info Info, p Processor[Req, Raw, Resp], params map[string]any,
) Envelope[Resp] {
	start := time.Now()
	env := run(ctx, p, params)
	finish(ctx, info, env, time.Since(start))
	return env
}

func run[Req, Raw, Resp any](ctx context.Context, p Processor[Req, Raw, Resp], params map[string]any) Envelope[Resp] {
	var (
		req  Req
		raw  Raw
		resp Resp
	)

	if err := guard(StateValidating, func() (err error) {
		req, err = p.Validate(params)
		return err
	}); err != nil {
		return fail[Resp](StateValidating, err)
	}

	if err := guard(StateExecuting, func() (err error) {
		raw, err = p.Execute(ctx, req)
		return err
	}); err != nil {
		return fail[Resp](StateExecuting, err)
	}

	if err := guard(StateNormalizing, func() (err error) {
		resp, err = p.Normalize(raw)
		return err
	}); err != nil {
		return fail[Resp](StateNormalizing, err)
	}

	return Envelope[Resp]{Success: true, Data: &resp}
}

// guard runs one stage and turns a panic into an internal error.
func guard(stage State, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during %s: %v", stage, r)
		}
	}()
	return fn()
}

func fail[T any](stage State, err error) Envelope[T] {
	return Envelope[T]{
		Error:     err.Error(),
		ErrorKind: domain.Kind(err),
		FailedAt:  stage,
	}
}

func finish[T any](ctx context.Context, info Info, env Envelope[T], elapsed time.Duration) {
	state, stage := StateDone, string(StateDone)
	if !env.Success {
		state, stage = StateFailed, string(env.FailedAt)
	}
	metrics.PipelineRunsTotal.WithLabelValues(info.Operation, info.Source, stage, env.ErrorKind).Inc()

	fields := []zap.Field{
		zap.String("operation", info.Operation),
		zap.String("source", info.Source),
		zap.String("state", string(state)),
		zap.Duration("duration", elapsed),
	}
	log := logger.FromContext(ctx)
	switch {
	case env.Success:
		log.Info("pipeline: done", fields...)
	case env.ErrorKind == domain.KindValidation || env.ErrorKind == domain.KindNotFound:
		log.Info("pipeline: rejected", append(fields,
			zap.String("stage", stage), zap.String("error_kind", env.ErrorKind), zap.String("error", env.Error))...)
	default:
		log.Warn("pipeline: failed", append(fields,
			zap.String("stage", stage), zap.String("error_kind", env.ErrorKind), zap.String("error", env.Error))...)
	}
}
