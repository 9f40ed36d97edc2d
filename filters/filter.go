package filters

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/adafilt/core/model"
	"github.com/YuminosukeSato/adafilt/metrics"
	"github.com/YuminosukeSato/adafilt/pkg/errors"
	"github.com/YuminosukeSato/adafilt/pkg/log"
)

var (
	_ model.OnlineFilter    = (*AdaptiveFilter)(nil)
	_ model.ParameterGetter = (*AdaptiveFilter)(nil)
	_ model.WeightExporter  = (*AdaptiveFilter)(nil)
	_ model.Persistable     = (*AdaptiveFilter)(nil)
	_ model.StreamingFilter = (*AdaptiveFilter)(nil)
	_ StatefulRule          = (*GNGDRule)(nil)
	_ StatefulRule          = (*ProjectionRule)(nil)
)

// AdaptiveFilter is an n-tap linear filter whose weights are updated by a
// LearningRule after every sample.
//
// An AdaptiveFilter is not safe for concurrent use. Independent filters may
// run concurrently; see RunParallel.
type AdaptiveFilter struct {
	n       int
	w       *mat.VecDense
	rule    LearningRule
	spec    WeightSpec
	sampler NormalSampler
	logger  log.Logger

	// samples adapted since construction or the last Reset
	steps int
}

// New creates a filter driven by a custom rule. The rule owns its step size.
func New(n int, rule LearningRule, opts ...Option) (*AdaptiveFilter, error) {
	if rule == nil {
		return nil, errors.NewValidationError("rule", "must not be nil", nil)
	}
	cfg := newConfig(Config{Weights: Random(), RandomState: -1}, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newAdaptiveFilter(n, rule, cfg)
}

func newAdaptiveFilter(n int, rule LearningRule, cfg Config) (*AdaptiveFilter, error) {
	sampler := cfg.sampler()
	w, err := InitWeights(cfg.Weights, n, sampler)
	if err != nil {
		return nil, err
	}
	return &AdaptiveFilter{
		n:       n,
		w:       w,
		rule:    rule,
		spec:    cfg.Weights,
		sampler: sampler,
		logger:  cfg.logger().With(log.ModelNameKey, rule.Name(), log.FeaturesKey, n),
	}, nil
}

// Len returns the filter length n.
func (f *AdaptiveFilter) Len() int { return f.n }

// Kind returns the learning rule name.
func (f *AdaptiveFilter) Kind() string { return f.rule.Name() }

func (f *AdaptiveFilter) base() *AdaptiveFilter { return f }

// Rule returns the learning rule.
func (f *AdaptiveFilter) Rule() LearningRule { return f.rule }

// Steps returns the number of samples adapted on since construction or Reset.
func (f *AdaptiveFilter) Steps() int { return f.steps }

// Weights returns a copy of the current weights.
func (f *AdaptiveFilter) Weights() []float64 {
	return mat.Col(nil, 0, f.w)
}

// Predict returns w·x without changing the filter.
func (f *AdaptiveFilter) Predict(x []float64) (float64, error) {
	if len(x) != f.n {
		return 0, errors.NewDimensionError("Predict", f.n, len(x), 1)
	}
	return mat.Dot(f.w, mat.NewVecDense(f.n, x)), nil
}

// Adapt updates the weights with one target/input pair.
func (f *AdaptiveFilter) Adapt(d float64, x []float64) error {
	if len(x) != f.n {
		return errors.NewDimensionError("Adapt", f.n, len(x), 1)
	}
	xv := mat.NewVecDense(f.n, x)
	_, e := f.apriori(d, xv)
	return f.update(d, e, xv)
}

// apriori returns the output and error before adaptation.
func (f *AdaptiveFilter) apriori(d float64, x *mat.VecDense) (y, e float64) {
	y = mat.Dot(f.w, x)
	return y, d - y
}

func (f *AdaptiveFilter) update(d, e float64, x *mat.VecDense) error {
	dw, err := f.rule.Delta(f.w, d, e, x)
	if err != nil {
		return err
	}
	f.w.AddVec(f.w, dw)
	f.steps++
	return nil
}

// Run filters the batch in order and returns the run history. len(d) must
// equal len(x) and every row of x must hold n values. The filter length is
// never rebound from the data.
func (f *AdaptiveFilter) Run(d []float64, x [][]float64) (*model.History, error) {
	xd, err := f.toDense("Run", d, x)
	if err != nil {
		return nil, err
	}
	return f.runRows(context.Background(), []any{log.OperationKey, log.OperationRun}, d, xd, 0, len(d))
}

// RunMatrix is Run on gonum inputs: d has one entry per row of x.
func (f *AdaptiveFilter) RunMatrix(d mat.Vector, x mat.Matrix) (*model.History, error) {
	r, c := x.Dims()
	if d.Len() != r {
		return nil, errors.NewDimensionError("RunMatrix", r, d.Len(), 0)
	}
	if c != f.n {
		return nil, errors.NewDimensionError("RunMatrix", f.n, c, 1)
	}
	return f.runRows(context.Background(), []any{log.OperationKey, log.OperationRun}, mat.Col(nil, 0, d), mat.DenseCopyOf(x), 0, r)
}

// PretrainedRun adapts epochs times on the first floor(N·ntrain) samples,
// discarding the outputs, then runs once over the rest and returns that
// history. The whole batch is validated before any weight changes.
func (f *AdaptiveFilter) PretrainedRun(d []float64, x [][]float64, ntrain float64, epochs int) (*model.History, error) {
	if math.IsNaN(ntrain) || ntrain < 0 || ntrain > 1 {
		return nil, errors.NewValidationError("ntrain", "must be within [0, 1]", ntrain)
	}
	if epochs < 0 {
		return nil, errors.NewValidationError("epochs", "must not be negative", epochs)
	}
	xd, err := f.toDense("PretrainedRun", d, x)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	split := int(math.Floor(float64(len(d)) * ntrain))
	for epoch := 0; epoch < epochs; epoch++ {
		fields := []any{log.OperationKey, log.OperationPretrainedRun, log.PhaseKey, log.PhaseTraining, log.EpochKey, epoch}
		if _, err := f.runRows(ctx, fields, d, xd, 0, split); err != nil {
			return nil, errors.Wrapf(err, "pretraining epoch %d", epoch)
		}
	}
	fields := []any{log.OperationKey, log.OperationPretrainedRun, log.PhaseKey, log.PhaseTesting}
	return f.runRows(ctx, fields, d, xd, split, len(d))
}

// toDense validates a batch and packs x into an N×n matrix. nil is returned
// for an empty batch.
func (f *AdaptiveFilter) toDense(op string, d []float64, x [][]float64) (*mat.Dense, error) {
	samples := len(x)
	if len(d) != samples {
		return nil, errors.NewDimensionError(op, samples, len(d), 0)
	}
	if samples == 0 {
		return nil, nil
	}
	if len(x[0]) == 0 {
		return nil, errors.NewConversionError(op, "x", 0, "empty row")
	}
	if len(x[0]) != f.n {
		return nil, errors.NewDimensionError(op, f.n, len(x[0]), 1)
	}

	data := make([]float64, samples*f.n)
	for k, row := range x {
		if len(row) != f.n {
			return nil, errors.NewConversionError(op, "x", k,
				fmt.Sprintf("ragged row of %d values, expected %d", len(row), f.n))
		}
		copy(data[k*f.n:], row)
	}
	return mat.NewDense(samples, f.n, data), nil
}

// runRows adapts on rows [lo, hi) of x. Row k-lo of the history holds the
// weights in effect before sample k. fields are added to the log records.
func (f *AdaptiveFilter) runRows(ctx context.Context, fields []any, d []float64, x *mat.Dense, lo, hi int) (*model.History, error) {
	start := time.Now()
	h := model.NewHistory(hi-lo, f.n)
	for k := lo; k < hi; k++ {
		xk := x.RowView(k).(*mat.VecDense)
		y, e := f.apriori(d[k], xk)
		h.Record(k-lo, f.w, y, e)
		if err := f.update(d[k], e, xk); err != nil {
			f.logger.Error("Run aborted", append([]any{err, log.IterationKey, k}, fields...)...)
			return nil, errors.Wrapf(err, "sample %d", k)
		}
	}
	h.Final = mat.VecDenseCopyOf(f.w)

	if h.Len() > 0 && f.logger.Enabled(ctx, log.LevelDebug) {
		mse, _ := metrics.MeanError(h.E, metrics.KindMSE)
		f.logger.Debug("Run finished", append(fields,
			log.SamplesKey, h.Len(),
			log.MSEKey, mse,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)...)
	}
	return h, nil
}

// Reset re-initialises the weights from the construction-time spec and
// clears the rule's memory.
func (f *AdaptiveFilter) Reset() error {
	w, err := InitWeights(f.spec, f.n, f.sampler)
	if err != nil {
		return err
	}
	f.w = w
	f.rule.Reset()
	f.steps = 0
	return nil
}

// Clone returns an independent copy with the same weights and rule memory.
// The clone shares the sampler and logger.
func (f *AdaptiveFilter) Clone() *AdaptiveFilter {
	c := *f
	c.w = mat.VecDenseCopyOf(f.w)
	c.rule = f.rule.Clone()
	return &c
}

// GetParams returns the filter's hyperparameters.
func (f *AdaptiveFilter) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"kind": f.rule.Name(),
		"n":    f.n,
		"w":    f.spec.String(),
	}
	for k, v := range f.rule.Params() {
		params[k] = v
	}
	return params
}
