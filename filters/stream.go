package filters

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/adafilt/core/model"
	"github.com/YuminosukeSato/adafilt/pkg/errors"
	"github.com/YuminosukeSato/adafilt/pkg/log"
)

// AdaptStream consumes samples until the channel is closed or ctx is done.
// Each sample is predicted before the filter adapts on it. A bad sample is
// reported in Prediction.Err and does not stop the stream.
//
// The filter must not be used by anything else until the returned channel
// is closed.
func (f *AdaptiveFilter) AdaptStream(ctx context.Context, samples <-chan model.Sample) <-chan model.Prediction {
	out := make(chan model.Prediction)
	go func() {
		defer close(out)
		logger := f.logger.With(log.OperationKey, log.OperationStream)
		failed := 0
		k := 0
		defer func() {
			logger.Debug("Stream closed", log.SamplesKey, k, "failed", failed)
		}()

		for ; ; k++ {
			var s model.Sample
			select {
			case <-ctx.Done():
				return
			case v, ok := <-samples:
				if !ok {
					return
				}
				s = v
			}

			p := f.streamStep(k, s)
			if p.Err != nil {
				failed++
			}
			select {
			case <-ctx.Done():
				return
			case out <- p:
			}
		}
	}()
	return out
}

func (f *AdaptiveFilter) streamStep(k int, s model.Sample) (p model.Prediction) {
	p.Index = k
	defer errors.Recover(&p.Err, "AdaptStream")

	if len(s.X) != f.n {
		p.Err = errors.NewDimensionError("AdaptStream", f.n, len(s.X), 1)
		return p
	}
	x := mat.NewVecDense(f.n, s.X)
	p.Y, p.E = f.apriori(s.D, x)
	p.Err = f.update(s.D, p.E, x)
	return p
}
