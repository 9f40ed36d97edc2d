// Package model defines the interfaces shared by all adaptive filters and the
// value types they exchange: run histories, weight snapshots and stream
// samples.
package model

// Predictor computes the filter output for one input vector.
type Predictor interface {
	// Predict returns w·x. It never mutates the filter.
	Predict(x []float64) (float64, error)
}

// Adapter updates the filter with one (target, input) pair.
type Adapter interface {
	Adapt(d float64, x []float64) error
}

// BatchRunner filters a batch of samples in order.
type BatchRunner interface {
	// Run adapts on every sample and returns outputs, errors and the weight
	// history.
	Run(d []float64, x [][]float64) (*History, error)
}

// OnlineFilter is the full surface of an adaptive filter.
type OnlineFilter interface {
	Predictor
	Adapter
	BatchRunner

	// PretrainedRun adapts on the leading ntrain fraction epochs times and
	// returns the history of a single pass over the remainder.
	PretrainedRun(d []float64, x [][]float64, ntrain float64, epochs int) (*History, error)

	// Weights returns a copy of the current weight vector.
	Weights() []float64

	// Len returns the filter length n.
	Len() int
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// WeightExporter is implemented by filters whose full state can be captured
// in a FilterWeights snapshot and restored later.
type WeightExporter interface {
	ExportWeights() (*FilterWeights, error)
	ImportWeights(w *FilterWeights) error
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	Save(path string) error
	Load(path string) error
}
