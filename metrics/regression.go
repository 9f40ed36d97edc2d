// Package metrics measures filter error sequences.
package metrics

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

// ErrorKind selects the mean error function used by MeanError.
type ErrorKind string

const (
	KindMSE  ErrorKind = "MSE"
	KindMAE  ErrorKind = "MAE"
	KindRMSE ErrorKind = "RMSE"
)

// ParseErrorKind accepts "mse", "mae" or "rmse" in any case.
func ParseErrorKind(s string) (ErrorKind, error) {
	switch k := ErrorKind(strings.ToUpper(s)); k {
	case KindMSE, KindMAE, KindRMSE:
		return k, nil
	default:
		return "", errors.NewValidationError("function", "must be MSE, MAE or RMSE", s)
	}
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	diff, err := residuals("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return meanSquare(diff), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	diff, err := residuals("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return meanAbs(diff), nil
}

// MeanError reduces an error sequence (for example History.E) to one number.
func MeanError(e []float64, kind ErrorKind) (float64, error) {
	if len(e) == 0 {
		return 0, errors.Wrapf(errors.ErrEmptyData, "MeanError(%s)", kind)
	}
	switch kind {
	case KindMSE:
		return meanSquare(e), nil
	case KindMAE:
		return meanAbs(e), nil
	case KindRMSE:
		return math.Sqrt(meanSquare(e)), nil
	default:
		return 0, errors.NewValidationError("function", "must be MSE, MAE or RMSE", string(kind))
	}
}

// MeanErrorBetween is MeanError applied to x1 - x2.
func MeanErrorBetween(x1, x2 []float64, kind ErrorKind) (float64, error) {
	if len(x1) != len(x2) {
		return 0, errors.NewDimensionError("MeanErrorBetween", len(x1), len(x2), 0)
	}
	diff := make([]float64, len(x1))
	floats.SubTo(diff, x1, x2)
	return MeanError(diff, kind)
}

// LogSquaredError returns 10·log10(e²) per sample, the usual dB view of a
// filter's learning curve.
func LogSquaredError(e []float64) []float64 {
	out := make([]float64, len(e))
	for i, v := range e {
		out[i] = 10 * math.Log10(v*v)
	}
	return out
}

func residuals(op string, yTrue, yPred *mat.VecDense) ([]float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	diff := make([]float64, n)
	floats.SubTo(diff, mat.Col(nil, 0, yTrue), mat.Col(nil, 0, yPred))
	return diff, nil
}

func meanSquare(e []float64) float64 {
	return floats.Dot(e, e) / float64(len(e))
}

func meanAbs(e []float64) float64 {
	abs := make([]float64, len(e))
	for i, v := range e {
		abs[i] = math.Abs(v)
	}
	return stat.Mean(abs, nil)
}
