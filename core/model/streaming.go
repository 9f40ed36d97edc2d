package model

import (
	"context"
)

// Sample is one observation of a stream: target d and input vector x.
type Sample struct {
	D float64
	X []float64
}

// Prediction is emitted for every stream sample. Y is computed before the
// filter adapts on the sample (test-then-train).
type Prediction struct {
	Index int
	Y     float64
	E     float64
	Err   error
}

// StreamingFilter adapts on a channel of samples until the channel is closed
// or ctx is cancelled. The returned channel is closed when processing stops.
type StreamingFilter interface {
	AdaptStream(ctx context.Context, samples <-chan Sample) <-chan Prediction
}
