package filters

import (
	"gonum.org/v1/gonum/mat"
)

// LearningRule computes the weight update of one adaptation step.
//
// Rules are stateful: Delta is called exactly once per sample, in sample
// order, and may read and advance the rule's own memory. A rule belongs to
// one filter and must not be shared.
type LearningRule interface {
	// Name identifies the rule, e.g. "GNGD".
	Name() string

	// Delta returns the update to add to w for the sample (d, x), where
	// e = d - w·x is the a priori error. w and x must not be modified or
	// retained.
	Delta(w mat.Vector, d, e float64, x *mat.VecDense) (*mat.VecDense, error)

	// Reset returns the rule's memory to its construction-time state.
	Reset()

	// Clone returns an independent deep copy.
	Clone() LearningRule

	// Params reports the rule's scalar hyperparameters.
	Params() map[string]float64
}

// StatefulRule is a LearningRule whose memory can be captured in a
// snapshot and restored.
type StatefulRule interface {
	LearningRule

	// State returns copies of the rule's memory.
	State() map[string][]float64

	// Restore replaces hyperparameters and memory. Missing keys keep their
	// current values.
	Restore(params map[string]float64, state map[string][]float64) error
}
