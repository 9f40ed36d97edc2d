package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

// minScale は定数列とみなす標準偏差の閾値
const minScale = 1e-8

// StandardScaler は各列を平均0、標準偏差1に変換する
// フィルタ入力の条件を揃えるために使う
type StandardScaler struct {
	// Mean は各列の平均値
	Mean []float64

	// Scale は各列の標準偏差（母標準偏差）
	Scale []float64

	// NFeatures は列数
	NFeatures int

	// WithMean は平均を引くかどうか
	WithMean bool

	// WithStd は標準偏差で割るかどうか
	WithStd bool

	fitted bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	xs, err := scaler.FitTransform(x)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は各列の平均と標準偏差を計算する
// 標準偏差がほぼ0の列はスケール1として扱う
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1
		if s.WithStd {
			if !s.WithMean {
				// 平均を引かない場合は原点周りの二乗平均
				std = math.Sqrt(floats.Dot(col, col) / float64(r))
			}
			if std >= minScale {
				s.Scale[j] = std
			}
		}
	}

	s.fitted = true
	return nil
}

// IsFitted reports whether Fit has succeeded.
func (s *StandardScaler) IsFitted() bool { return s.fitted }

// Transform は学習済みの統計情報でデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.check("StandardScaler.Transform", X); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

// FitTransform は学習と変換を同時に行う
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.check("StandardScaler.InverseTransform", X); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	result := mat.NewDense(r, c, nil)
	result.Apply(func(_, j int, v float64) float64 {
		return v*s.Scale[j] + s.Mean[j]
	}, X)
	return result, nil
}

func (s *StandardScaler) check(op string, X mat.Matrix) error {
	if !s.fitted {
		return errors.Wrap(errors.ErrNotFitted, op)
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return errors.NewDimensionError(op, s.NFeatures, c, 1)
	}
	return nil
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.fitted {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}

// Standardize は系列を平均0、標準偏差1に変換し、使ったオフセットとスケールを返す
func Standardize(x []float64) (out []float64, offset, scale float64, err error) {
	if len(x) == 0 {
		return nil, 0, 0, errors.Wrap(errors.ErrEmptyData, "Standardize")
	}
	offset, scale = stat.PopMeanStdDev(x, nil)
	out, err = StandardizeWith(x, offset, scale)
	return out, offset, scale, err
}

// StandardizeWith は (x - offset) / scale を返す
func StandardizeWith(x []float64, offset, scale float64) ([]float64, error) {
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, errors.NewValidationError("scale", "must be finite and non-zero", scale)
	}
	out := make([]float64, len(x))
	copy(out, x)
	floats.AddConst(-offset, out)
	floats.Scale(1/scale, out)
	return out, nil
}

// StandardizeBack は StandardizeWith の逆変換 x·scale + offset
func StandardizeBack(x []float64, offset, scale float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	floats.Scale(scale, out)
	floats.AddConst(offset, out)
	return out
}
