package model

import (
	"gonum.org/v1/gonum/mat"
)

// History records one batch run: the output y[k], the a priori error e[k]
// and the weights in effect before the k-th update.
type History struct {
	Y []float64
	E []float64

	// W has one row per sample; row k holds the weights used to produce Y[k].
	// nil for an empty batch.
	W *mat.Dense

	// Final is the weight vector after the last update.
	Final *mat.VecDense
}

// NewHistory allocates a history for samples samples of an n-tap filter.
func NewHistory(samples, n int) *History {
	h := &History{
		Y: make([]float64, samples),
		E: make([]float64, samples),
	}
	if samples > 0 {
		h.W = mat.NewDense(samples, n, nil)
	}
	return h
}

// Record stores step k. w must be the pre-update weights.
func (h *History) Record(k int, w mat.Vector, y, e float64) {
	h.W.SetRow(k, mat.Col(nil, 0, w))
	h.Y[k] = y
	h.E[k] = e
}

// Len returns the number of recorded samples.
func (h *History) Len() int {
	return len(h.Y)
}

// Weights returns a copy of history row k. An empty history has no rows
// and returns nil.
func (h *History) Weights(k int) []float64 {
	if h.W == nil {
		return nil
	}
	return mat.Row(nil, k, h.W)
}

// FinalWeights returns a copy of the weights after the run.
func (h *History) FinalWeights() []float64 {
	if h.Final == nil {
		return nil
	}
	return mat.Col(nil, 0, h.Final)
}
