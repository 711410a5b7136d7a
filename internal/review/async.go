// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Result is delivered once by Start.
type Result struct {
	Review Review
	Err    error
}

// Start runs the pipeline on its own goroutine and returns a channel that
// receives exactly one Result before it is closed. A panic inside the
// pipeline is recovered and reported as Result.Err.
func (p *Pipeline) Start(ctx context.Context, topic string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				p.logger().Error("review pipeline panicked", zap.Any("panic", r))
				ch <- Result{Err: fmt.Errorf("review pipeline panicked: %v", r)}
			}
		}()
		rev, err := p.Run(ctx, topic)
		ch <- Result{Review: rev, Err: err}
	}()
	return ch
}
