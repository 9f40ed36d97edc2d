package filters

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

// Named initialisation policies.
const (
	PolicyRandom = "random"
	PolicyZeros  = "zeros"
)

// randomSigma is the standard deviation of "random" initial weights.
const randomSigma = 0.5

// WeightSpec describes the initial weight vector: either a named Policy or
// explicit Values. Values wins when it is non-nil.
type WeightSpec struct {
	Policy string
	Values []float64
}

// Random draws initial weights from N(0, 0.5²).
func Random() WeightSpec { return WeightSpec{Policy: PolicyRandom} }

// Zeros starts from the zero vector.
func Zeros() WeightSpec { return WeightSpec{Policy: PolicyZeros} }

// Values starts from explicit weights. The slice is copied.
func Values(w ...float64) WeightSpec {
	return WeightSpec{Values: append(make([]float64, 0, len(w)), w...)}
}

func (s WeightSpec) String() string {
	if s.Values != nil {
		return fmt.Sprint(s.Values)
	}
	return s.Policy
}

// ParseWeightSpec converts loosely typed input, e.g. decoded JSON, into a
// WeightSpec. Strings become policies; numeric slices become explicit values.
func ParseWeightSpec(v interface{}) (WeightSpec, error) {
	switch s := v.(type) {
	case WeightSpec:
		return s, nil
	case string:
		return WeightSpec{Policy: s}, nil
	case []float64:
		return Values(s...), nil
	case []float32:
		out := make([]float64, len(s))
		for i, f := range s {
			out[i] = float64(f)
		}
		return WeightSpec{Values: out}, nil
	case []int:
		out := make([]float64, len(s))
		for i, f := range s {
			out[i] = float64(f)
		}
		return WeightSpec{Values: out}, nil
	case []interface{}:
		out := make([]float64, len(s))
		for i, e := range s {
			f, ok := toFloat(e)
			if !ok {
				return WeightSpec{}, errors.NewInvalidWeightSpecError(v, fmt.Sprintf("element %d (%v) is not numeric", i, e))
			}
			out[i] = f
		}
		return WeightSpec{Values: out}, nil
	default:
		return WeightSpec{}, errors.NewInvalidWeightSpecError(v, fmt.Sprintf("unsupported type %T", v))
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// NormalSampler produces normally distributed samples. distuv.Normal
// satisfies it.
type NormalSampler interface {
	Rand() float64
}

// NewNormalSampler returns a N(0, 0.5²) sampler with a seeded PCG source.
func NewNormalSampler(seed uint64) NormalSampler {
	return distuv.Normal{Mu: 0, Sigma: randomSigma, Src: rand.NewPCG(seed, seed)}
}

// defaultSampler draws from the process-wide source.
func defaultSampler() NormalSampler {
	return distuv.Normal{Mu: 0, Sigma: randomSigma}
}

// InitWeights builds the initial weight vector of an n-tap filter.
// sampler is only consulted for the "random" policy; nil selects the
// process-wide source.
func InitWeights(spec WeightSpec, n int, sampler NormalSampler) (*mat.VecDense, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "filter length must be positive", n)
	}
	if spec.Values != nil {
		if len(spec.Values) != n {
			return nil, errors.NewInvalidWeightSpecError(spec.Values,
				fmt.Sprintf("expected %d weights, got %d", n, len(spec.Values)))
		}
		return mat.NewVecDense(n, append([]float64(nil), spec.Values...)), nil
	}

	switch spec.Policy {
	case PolicyRandom:
		if sampler == nil {
			sampler = defaultSampler()
		}
		w := make([]float64, n)
		for i := range w {
			w[i] = sampler.Rand()
		}
		return mat.NewVecDense(n, w), nil
	case PolicyZeros:
		return mat.NewVecDense(n, nil), nil
	default:
		return nil, errors.NewInvalidWeightSpecError(spec.Policy, `policy must be "random" or "zeros"`)
	}
}
