package model

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

func sampleWeights() *FilterWeights {
	return &FilterWeights{
		Kind:            "GNGD",
		Version:         SnapshotVersion,
		N:               3,
		Coefficients:    []float64{0.1, -0.2, 0.3},
		Hyperparameters: map[string]float64{"mu": 0.1, "eps": 0.9, "ro": 0.1},
		State:           map[string][]float64{"last_e": {0.5}, "last_x": {1, 2, 3}},
	}
}

func TestFilterWeightsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(fw *FilterWeights)
		check  func(t *testing.T, err error)
	}{
		{"valid", func(*FilterWeights) {}, func(t *testing.T, err error) {
			assert.NoError(t, err)
		}},
		{"missing kind", func(fw *FilterWeights) { fw.Kind = "" }, func(t *testing.T, err error) {
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, "kind", valErr.ParamName)
		}},
		{"unknown version", func(fw *FilterWeights) { fw.Version = "2" }, func(t *testing.T, err error) {
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, "version", valErr.ParamName)
		}},
		{"non-positive n", func(fw *FilterWeights) { fw.N = 0 }, func(t *testing.T, err error) {
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
		}},
		{"length mismatch", func(fw *FilterWeights) { fw.N = 4 }, func(t *testing.T, err error) {
			var dimErr *errors.DimensionError
			require.True(t, errors.As(err, &dimErr))
		}},
		{"NaN coefficient", func(fw *FilterWeights) { fw.Coefficients[1] = math.NaN() }, func(t *testing.T, err error) {
			var numErr *errors.NumericalInstabilityError
			require.True(t, errors.As(err, &numErr))
		}},
		{"infinite hyperparameter", func(fw *FilterWeights) { fw.Hyperparameters["mu"] = math.Inf(1) }, func(t *testing.T, err error) {
			var numErr *errors.NumericalInstabilityError
			require.True(t, errors.As(err, &numErr))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw := sampleWeights()
			tt.mutate(fw)
			tt.check(t, fw.Validate())
		})
	}
}

func TestFilterWeightsJSON(t *testing.T) {
	fw := sampleWeights()
	data, err := fw.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "GNGD"`)

	var decoded FilterWeights
	require.NoError(t, decoded.FromJSON(data))
	assert.Equal(t, fw, &decoded)

	assert.Error(t, decoded.FromJSON([]byte("{")))
}

func TestFilterWeightsClone(t *testing.T) {
	fw := sampleWeights()
	clone := fw.Clone()
	require.Equal(t, fw, clone)

	clone.Coefficients[0] = 42
	clone.Hyperparameters["mu"] = 42
	clone.State["last_x"][0] = 42
	assert.Equal(t, 0.1, fw.Coefficients[0])
	assert.Equal(t, 0.1, fw.Hyperparameters["mu"])
	assert.Equal(t, 1.0, fw.State["last_x"][0])
}

func TestPersistence(t *testing.T) {
	fw := sampleWeights()

	t.Run("writer", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SaveModelToWriter(fw, &buf))

		var loaded FilterWeights
		require.NoError(t, LoadModelFromReader(&loaded, &buf))
		assert.Equal(t, fw, &loaded)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "weights.gob")
		require.NoError(t, SaveModel(fw, path))

		var loaded FilterWeights
		require.NoError(t, LoadModel(&loaded, path))
		assert.Equal(t, fw, &loaded)
	})

	t.Run("errors", func(t *testing.T) {
		var modelErr *errors.ModelError
		err := SaveModel(fw, filepath.Join(t.TempDir(), "missing", "weights.gob"))
		assert.True(t, errors.As(err, &modelErr))

		var loaded FilterWeights
		err = LoadModelFromReader(&loaded, bytes.NewReader([]byte("garbage")))
		assert.True(t, errors.As(err, &modelErr))
	})
}
