// Package preprocessing prepares filter inputs: delay embeddings of a
// signal and standardisation.
package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

// InputFromHistory builds the input matrix of an n-tap filter from the
// signal a. Row k is a[k:k+n]; with bias a trailing column of ones is
// added. The result has len(a)-n+1 rows.
//
//	x, _ := preprocessing.InputFromHistory(u, 4, false)
//	// x.RawRowView(0) == u[0:4]
func InputFromHistory(a []float64, n int, bias bool) (*mat.Dense, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "history length must be positive", n)
	}
	if len(a) < n {
		return nil, errors.NewDimensionError("InputFromHistory", n, len(a), 0)
	}

	rows := len(a) - n + 1
	cols := n
	if bias {
		cols++
	}
	x := mat.NewDense(rows, cols, nil)
	for k := 0; k < rows; k++ {
		row := x.RawRowView(k)
		copy(row, a[k:k+n])
		if bias {
			row[n] = 1
		}
	}
	return x, nil
}

// Rows converts a matrix into the row slices accepted by batch runs.
func Rows(x mat.Matrix) [][]float64 {
	r, _ := x.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, x)
	}
	return out
}
