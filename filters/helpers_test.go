package filters

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

// identificationData は d = coef·x + noise の未知システムからサンプルを生成する
func identificationData(samples int, coef []float64, noise float64, seed uint64) ([]float64, [][]float64) {
	input := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, 1)}
	disturbance := distuv.Normal{Mu: 0, Sigma: noise, Src: rand.NewPCG(seed, 2)}

	d := make([]float64, samples)
	x := make([][]float64, samples)
	for k := range x {
		x[k] = make([]float64, len(coef))
		for i := range coef {
			x[k][i] = input.Rand()
			d[k] += coef[i] * x[k][i]
		}
		if noise > 0 {
			d[k] += disturbance.Rand()
		}
	}
	return d, x
}

// spyRule is a plain LMS rule that records every delta it returns.
type spyRule struct {
	mu     float64
	deltas [][]float64
}

func (s *spyRule) Name() string { return "spy" }

func (s *spyRule) Delta(_ mat.Vector, _, e float64, x *mat.VecDense) (*mat.VecDense, error) {
	dw := mat.NewVecDense(x.Len(), nil)
	dw.ScaleVec(s.mu*e, x)
	s.deltas = append(s.deltas, mat.Col(nil, 0, dw))
	return dw, nil
}

func (s *spyRule) Reset() { s.deltas = nil }

func (s *spyRule) Clone() LearningRule {
	c := &spyRule{mu: s.mu}
	for _, d := range s.deltas {
		c.deltas = append(c.deltas, append([]float64(nil), d...))
	}
	return c
}

func (s *spyRule) Params() map[string]float64 { return map[string]float64{"mu": s.mu} }

var errRuleFailed = errors.New("rule failed")

// failingRule fails on call failAt and is a no-op otherwise.
type failingRule struct {
	calls  int
	failAt int
}

func (r *failingRule) Name() string { return "failing" }

func (r *failingRule) Delta(_ mat.Vector, _, _ float64, x *mat.VecDense) (*mat.VecDense, error) {
	defer func() { r.calls++ }()
	if r.calls == r.failAt {
		return nil, errRuleFailed
	}
	return mat.NewVecDense(x.Len(), nil), nil
}

func (r *failingRule) Reset()                     { r.calls = 0 }
func (r *failingRule) Clone() LearningRule        { c := *r; return &c }
func (r *failingRule) Params() map[string]float64 { return nil }

func vec(v []float64) *mat.VecDense {
	return mat.NewVecDense(len(v), append([]float64(nil), v...))
}
