// Package pipeline provides the stage abstraction the decoder runs on and the
// result types that flow between the decoder, the orchestrator and the
// submission side.
package pipeline

import (
	"context"
)

// Stage is one step of the slice pipeline.
type Stage[In, Out any] interface {
	// Execute runs the stage with the given input and returns the output.
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc is a function adapter for Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}

// Chain runs first, then second on its output.
func Chain[A, B, C any](first Stage[A, B], second Stage[B, C]) Stage[A, C] {
	return StageFunc[A, C](func(ctx context.Context, input A) (C, error) {
		mid, err := first.Execute(ctx, input)
		if err != nil {
			var zero C
			return zero, err
		}
		return second.Execute(ctx, mid)
	})
}
