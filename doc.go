// Package adafilt provides online adaptive linear filters for Go services:
// system identification, noise and echo cancellation, and online
// prediction.
//
// A filter holds an n-tap weight vector and refines it after every
// (target, input) pair using a pluggable learning rule. The library ships
// the GNGD rule, whose regularisation term adapts online, and the affine
// projection (AP) rule, which updates from a sliding window of recent
// samples.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/adafilt/filters"
//	)
//
//	func main() {
//	    f, err := filters.NewGNGD(2,
//	        filters.WithMu(0.1),
//	        filters.WithWeights(filters.Zeros()),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    h, err := f.Run([]float64{1, 2}, [][]float64{{1, 0}, {0, 1}})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(h.Y, h.E, f.Weights()) // [0 0] [1 2] [0.05 0.1]
//	}
//
// # Packages
//
//   - filters: the adaptive filter core, learning rules, streaming and
//     parallel batch runs
//   - core/model: interfaces, run histories, weight snapshots, persistence
//   - core/parallel: range splitting across goroutines
//   - metrics: MSE, MAE, RMSE and learning-curve helpers
//   - preprocessing: delay embeddings and standardisation
//   - pkg/errors: structured errors and warnings
//   - pkg/log: structured logging (zerolog and slog backends)
//
// # Error Handling
//
// Errors carry stack traces and are matched by type:
//
//	var dimErr *errors.DimensionError
//	if errors.As(err, &dimErr) {
//	    // wrong number of samples or features
//	}
//
// Non-fatal conditions, such as GNGD's regularisation term turning
// non-positive, are reported through errors.Warn; route them into zerolog
// with log.InstallWarningHook.
package adafilt
