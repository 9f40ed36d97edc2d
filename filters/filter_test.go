package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
	"github.com/YuminosukeSato/adafilt/pkg/log"
)

func TestNew(t *testing.T) {
	t.Run("nil rule", func(t *testing.T) {
		_, err := New(2, nil)
		var valErr *errors.ValidationError
		require.True(t, errors.As(err, &valErr))
		assert.Equal(t, "rule", valErr.ParamName)
	})

	t.Run("non-positive length", func(t *testing.T) {
		_, err := New(0, &spyRule{mu: 0.1})
		var valErr *errors.ValidationError
		require.True(t, errors.As(err, &valErr))
		assert.Equal(t, "n", valErr.ParamName)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := New(2, &spyRule{mu: 0.1}, WithWeights(WeightSpec{Policy: "ones"}))
		var specErr *errors.InvalidWeightSpecError
		require.True(t, errors.As(err, &specErr))
	})

	t.Run("explicit weights", func(t *testing.T) {
		f, err := New(3, &spyRule{mu: 0.1}, WithWeights(Values(1, 2, 3)))
		require.NoError(t, err)
		assert.Equal(t, 3, f.Len())
		assert.Equal(t, "spy", f.Kind())
		assert.Equal(t, []float64{1, 2, 3}, f.Weights())
	})
}

func TestPredict(t *testing.T) {
	f, err := New(3, &spyRule{mu: 0.1}, WithWeights(Values(1, -1, 0.5)))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		y, err := f.Predict([]float64{2, 1, 4})
		require.NoError(t, err)
		assert.InDelta(t, 3.0, y, 1e-12)
	}
	assert.Equal(t, []float64{1, -1, 0.5}, f.Weights())

	_, err = f.Predict([]float64{1, 2})
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Axis)
}

func TestAdapt(t *testing.T) {
	rule := &spyRule{mu: 0.5}
	f, err := New(2, rule, WithWeights(Zeros()))
	require.NoError(t, err)

	require.NoError(t, f.Adapt(2, []float64{1, 0}))
	assert.Equal(t, []float64{1, 0}, f.Weights())
	assert.Equal(t, 1, f.Steps())

	err = f.Adapt(2, []float64{1})
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, []float64{1, 0}, f.Weights())
	assert.Len(t, rule.deltas, 1)
}

func TestRunHistoryInvariant(t *testing.T) {
	rule := &spyRule{mu: 0.05}
	initial := []float64{0.3, -0.2, 0.1}
	f, err := New(3, rule, WithWeights(Values(initial...)))
	require.NoError(t, err)

	d, x := identificationData(40, []float64{1, 2, 3}, 0.01, 11)
	h, err := f.Run(d, x)
	require.NoError(t, err)
	require.Equal(t, 40, h.Len())
	require.Len(t, rule.deltas, 40)

	assert.Equal(t, initial, h.Weights(0))
	for k := 0; k < h.Len(); k++ {
		w := h.Weights(k)
		assert.InDelta(t, mat.Dot(mat.NewVecDense(3, w), mat.NewVecDense(3, x[k])), h.Y[k], 1e-12)
		assert.InDelta(t, d[k]-h.Y[k], h.E[k], 1e-12)

		next := make([]float64, 3)
		for i := range next {
			next[i] = w[i] + rule.deltas[k][i]
		}
		if k+1 < h.Len() {
			assert.InDeltaSlice(t, next, h.Weights(k+1), 1e-12, "step %d", k)
		} else {
			assert.InDeltaSlice(t, next, h.FinalWeights(), 1e-12)
		}
	}
	assert.Equal(t, h.FinalWeights(), f.Weights())
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name  string
		d     []float64
		x     [][]float64
		check func(t *testing.T, err error)
	}{
		{
			name: "sample count mismatch",
			d:    []float64{1, 2, 3},
			x:    [][]float64{{1, 0}, {0, 1}},
			check: func(t *testing.T, err error) {
				var dimErr *errors.DimensionError
				require.True(t, errors.As(err, &dimErr))
				assert.Equal(t, 0, dimErr.Axis)
				assert.Equal(t, 2, dimErr.Expected)
				assert.Equal(t, 3, dimErr.Got)
			},
		},
		{
			name: "first row wider than filter",
			d:    []float64{1, 2},
			x:    [][]float64{{1, 0, 0}, {0, 1, 0}},
			check: func(t *testing.T, err error) {
				var dimErr *errors.DimensionError
				require.True(t, errors.As(err, &dimErr))
				assert.Equal(t, 1, dimErr.Axis)
				assert.Equal(t, 3, dimErr.Got)
			},
		},
		{
			name: "ragged row",
			d:    []float64{1, 2, 3},
			x:    [][]float64{{1, 0}, {0, 1}, {1}},
			check: func(t *testing.T, err error) {
				var convErr *errors.ConversionError
				require.True(t, errors.As(err, &convErr))
				assert.Equal(t, "x", convErr.Input)
				assert.Equal(t, 2, convErr.Row)
			},
		},
		{
			name: "empty first row",
			d:    []float64{1},
			x:    [][]float64{{}},
			check: func(t *testing.T, err error) {
				var convErr *errors.ConversionError
				require.True(t, errors.As(err, &convErr))
				assert.Equal(t, 0, convErr.Row)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &spyRule{mu: 0.1}
			f, err := New(2, rule, WithWeights(Values(0.5, 0.5)))
			require.NoError(t, err)

			h, err := f.Run(tt.d, tt.x)
			require.Error(t, err)
			assert.Nil(t, h)
			tt.check(t, err)

			// 検証エラーでは状態が一切変化しない
			assert.Equal(t, []float64{0.5, 0.5}, f.Weights())
			assert.Empty(t, rule.deltas)
		})
	}
}

func TestRunEmptyBatch(t *testing.T) {
	f, err := New(2, &spyRule{mu: 0.1}, WithWeights(Values(1, 2)))
	require.NoError(t, err)

	h, err := f.Run(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
	assert.Nil(t, h.W)
	assert.Equal(t, []float64{1, 2}, h.FinalWeights())
}

func TestRunRuleError(t *testing.T) {
	f, err := New(2, &failingRule{failAt: 2}, WithWeights(Zeros()))
	require.NoError(t, err)

	_, err = f.Run([]float64{1, 1, 1, 1}, [][]float64{{1, 0}, {1, 0}, {1, 0}, {1, 0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errRuleFailed))
	assert.Contains(t, err.Error(), "sample 2")
	assert.Equal(t, 2, f.Steps())
}

func TestRunMatrix(t *testing.T) {
	d, x := identificationData(30, []float64{0.5, -1}, 0, 3)
	a, err := New(2, &spyRule{mu: 0.1}, WithWeights(Zeros()))
	require.NoError(t, err)
	b := a.Clone()

	want, err := a.Run(d, x)
	require.NoError(t, err)

	xm := mat.NewDense(len(x), 2, nil)
	for k, row := range x {
		xm.SetRow(k, row)
	}
	got, err := b.RunMatrix(mat.NewVecDense(len(d), d), xm)
	require.NoError(t, err)

	assert.Equal(t, want.Y, got.Y)
	assert.Equal(t, want.E, got.E)
	assert.True(t, mat.Equal(want.W, got.W))

	_, err = b.RunMatrix(mat.NewVecDense(2, nil), xm)
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 0, dimErr.Axis)

	_, err = b.RunMatrix(mat.NewVecDense(2, nil), mat.NewDense(2, 3, nil))
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Axis)
}

func TestPretrainedRun(t *testing.T) {
	d, x := identificationData(20, []float64{1, -2}, 0.01, 5)

	f, err := NewGNGD(2, WithMu(0.2), WithWeights(Zeros()))
	require.NoError(t, err)
	ref := f.Clone()

	h, err := f.PretrainedRun(d, x, 0.5, 3)
	require.NoError(t, err)
	require.Equal(t, 10, h.Len())

	// 前半を3回学習した後、後半を1回実行した結果と一致する
	for epoch := 0; epoch < 3; epoch++ {
		_, err := ref.Run(d[:10], x[:10])
		require.NoError(t, err)
	}
	want, err := ref.Run(d[10:], x[10:])
	require.NoError(t, err)

	assert.InDeltaSlice(t, want.Y, h.Y, 1e-12)
	assert.InDeltaSlice(t, want.E, h.E, 1e-12)
	assert.InDeltaSlice(t, want.FinalWeights(), h.FinalWeights(), 1e-12)
	assert.InDelta(t, ref.Eps(), f.Eps(), 1e-12)
}

func TestPretrainedRunEdges(t *testing.T) {
	d, x := identificationData(7, []float64{1, -2}, 0, 5)

	t.Run("split floors", func(t *testing.T) {
		f, err := NewGNGD(2, WithWeights(Zeros()))
		require.NoError(t, err)
		h, err := f.PretrainedRun(d, x, 0.5, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, h.Len())
		assert.Equal(t, 7, f.Steps())
	})

	t.Run("no pretraining", func(t *testing.T) {
		f, err := NewGNGD(2, WithWeights(Zeros()))
		require.NoError(t, err)
		h, err := f.PretrainedRun(d, x, 0, 5)
		require.NoError(t, err)
		assert.Equal(t, 7, h.Len())
	})

	t.Run("train on everything", func(t *testing.T) {
		f, err := NewGNGD(2, WithWeights(Zeros()))
		require.NoError(t, err)
		h, err := f.PretrainedRun(d, x, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 0, h.Len())
		assert.Equal(t, 14, f.Steps())
		assert.Equal(t, f.Weights(), h.FinalWeights())
	})

	t.Run("invalid arguments", func(t *testing.T) {
		f, err := NewGNGD(2, WithWeights(Zeros()))
		require.NoError(t, err)

		for _, ntrain := range []float64{-0.1, 1.5} {
			_, err = f.PretrainedRun(d, x, ntrain, 1)
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, "ntrain", valErr.ParamName)
		}

		_, err = f.PretrainedRun(d, x, 0.5, -1)
		var valErr *errors.ValidationError
		require.True(t, errors.As(err, &valErr))
		assert.Equal(t, "epochs", valErr.ParamName)

		_, err = f.PretrainedRun(d[:3], x, 0.5, 1)
		var dimErr *errors.DimensionError
		require.True(t, errors.As(err, &dimErr))

		assert.Equal(t, 0, f.Steps())
		assert.Equal(t, []float64{0, 0}, f.Weights())
	})
}

func TestResetAndClone(t *testing.T) {
	d, x := identificationData(25, []float64{1, 1}, 0.1, 9)

	f, err := NewGNGD(2, WithMu(0.5), WithRo(0.5), WithWeights(Zeros()))
	require.NoError(t, err)

	_, err = f.Run(d, x)
	require.NoError(t, err)
	c := f.Clone()

	require.NoError(t, f.Reset())
	assert.Equal(t, []float64{0, 0}, f.Weights())
	assert.Equal(t, DefaultGNGDEps, f.Eps())
	assert.Equal(t, 0, f.Steps())

	// クローンはリセットの影響を受けない
	assert.NotEqual(t, []float64{0, 0}, c.Weights())
	assert.Equal(t, 25, c.Steps())

	require.NoError(t, c.Adapt(1, []float64{1, 1}))
	assert.Equal(t, []float64{0, 0}, f.Weights())
}

func TestResetRandomWeights(t *testing.T) {
	f, err := NewGNGD(4, WithRandomState(42))
	require.NoError(t, err)
	g, err := NewGNGD(4, WithRandomState(42))
	require.NoError(t, err)
	assert.Equal(t, f.Weights(), g.Weights())

	first := f.Weights()
	require.NoError(t, f.Reset())
	assert.Len(t, f.Weights(), 4)
	assert.NotEqual(t, first, f.Weights())
}

func TestGetParams(t *testing.T) {
	f, err := NewGNGD(3, WithMu(0.3), WithWeights(Zeros()))
	require.NoError(t, err)

	params := f.GetParams()
	assert.Equal(t, "GNGD", params["kind"])
	assert.Equal(t, 3, params["n"])
	assert.Equal(t, "zeros", params["w"])
	assert.Equal(t, 0.3, params["mu"])
	assert.Equal(t, DefaultGNGDRo, params["ro"])
	assert.Equal(t, DefaultGNGDEps, params["eps"])
}

func TestRunLogging(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	f, err := NewGNGD(2, WithWeights(Zeros()), WithLogger(logger))
	require.NoError(t, err)

	d, x := identificationData(10, []float64{1, 2}, 0, 1)
	_, err = f.Run(d, x)
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("Run finished"))
	assert.True(t, logger.ContainsField(log.ModelNameKey, "GNGD"))
	assert.True(t, logger.ContainsField(log.SamplesKey, float64(10)))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationRun))

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[len(entries)-1], log.MSEKey)
}

func TestRunQuietAboveDebug(t *testing.T) {
	logger, buf := log.NewTestLogger(log.LevelInfo)
	f, err := NewGNGD(2, WithRo(0), WithWeights(Zeros()), WithLogger(logger))
	require.NoError(t, err)

	d, x := identificationData(10, []float64{1, 2}, 0, 1)
	_, err = f.Run(d, x)
	require.NoError(t, err)
	assert.Zero(t, buf.Len())
}
