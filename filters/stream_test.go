package filters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/adafilt/core/model"
	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

func feed(samples []model.Sample) <-chan model.Sample {
	ch := make(chan model.Sample, len(samples))
	for _, s := range samples {
		ch <- s
	}
	close(ch)
	return ch
}

func TestAdaptStreamMatchesRun(t *testing.T) {
	d, x := identificationData(50, []float64{1, -0.5, 2}, 0.01, 4)

	streamed, err := NewGNGD(3, WithMu(0.2), WithRandomState(5))
	require.NoError(t, err)
	batch := streamed.Clone()

	samples := make([]model.Sample, len(d))
	for k := range d {
		samples[k] = model.Sample{D: d[k], X: x[k]}
	}

	var preds []model.Prediction
	for p := range streamed.AdaptStream(context.Background(), feed(samples)) {
		preds = append(preds, p)
	}

	h, err := batch.Run(d, x)
	require.NoError(t, err)
	require.Len(t, preds, len(d))
	for k, p := range preds {
		require.NoError(t, p.Err)
		assert.Equal(t, k, p.Index)
		assert.InDelta(t, h.Y[k], p.Y, 1e-12)
		assert.InDelta(t, h.E[k], p.E, 1e-12)
	}
	assert.InDeltaSlice(t, batch.Weights(), streamed.Weights(), 1e-12)
}

func TestAdaptStreamBadSample(t *testing.T) {
	f, err := NewGNGD(2, WithWeights(Zeros()))
	require.NoError(t, err)

	samples := []model.Sample{
		{D: 1, X: []float64{1, 0}},
		{D: 1, X: []float64{1}},
		{D: 1, X: []float64{0, 1}},
	}

	var preds []model.Prediction
	for p := range f.AdaptStream(context.Background(), feed(samples)) {
		preds = append(preds, p)
	}

	require.Len(t, preds, 3)
	assert.NoError(t, preds[0].Err)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(preds[1].Err, &dimErr))
	assert.NoError(t, preds[2].Err)
	assert.Equal(t, 2, f.Steps())
}

func TestAdaptStreamCancel(t *testing.T) {
	f, err := NewAP(2, WithOrder(2), WithWeights(Zeros()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan model.Sample)
	out := f.AdaptStream(ctx, in)

	in <- model.Sample{D: 1, X: []float64{1, 1}}
	p := <-out
	require.NoError(t, p.Err)

	cancel()
	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
}
