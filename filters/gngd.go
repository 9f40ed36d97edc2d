package filters

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
	"github.com/YuminosukeSato/adafilt/pkg/log"
)

// GNGD defaults.
const (
	DefaultGNGDMu  = 1.0
	DefaultGNGDEps = 1.0
	DefaultGNGDRo  = 0.1
)

// GNGDRule is the generalized normalized gradient descent rule. Its
// regularisation term eps is re-estimated every step from the previous
// error and input:
//
//	eps ← eps − ro·mu·e·e₋₁·(x·x₋₁) / (x₋₁·x₋₁ + eps)²
//	Δw  = mu / (eps + x·x) · e · x
//
// eps is never clamped. When it leaves the positive half-line a
// RegularizationWarning is raised once; it is raised again only after eps
// has recovered.
type GNGDRule struct {
	mu, ro float64
	eps0   float64
	eps    float64
	lastE  float64
	lastX  *mat.VecDense

	step   int
	warned bool
	logger log.Logger
}

// NewGNGDRule creates the rule for n-tap filters. eps must be positive.
func NewGNGDRule(n int, mu, eps, ro float64) (*GNGDRule, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "filter length must be positive", n)
	}
	cfg := Config{Mu: mu, Eps: eps, Ro: ro}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eps <= 0 {
		return nil, errors.NewValidationError("eps", "initial regularization must be positive", eps)
	}
	return &GNGDRule{
		mu:     mu,
		ro:     ro,
		eps0:   eps,
		eps:    eps,
		lastX:  mat.NewVecDense(n, nil),
		logger: log.GetLoggerWithName("filters"),
	}, nil
}

// Name implements LearningRule.
func (r *GNGDRule) Name() string { return "GNGD" }

// Eps returns the current regularisation term.
func (r *GNGDRule) Eps() float64 { return r.eps }

// Delta implements LearningRule. w and d are not used.
func (r *GNGDRule) Delta(_ mat.Vector, _, e float64, x *mat.VecDense) (*mat.VecDense, error) {
	denom := mat.Dot(r.lastX, r.lastX) + r.eps
	eps := r.eps - r.ro*r.mu*e*r.lastE*mat.Dot(x, r.lastX)/(denom*denom)
	nu := r.mu / (eps + mat.Dot(x, x))
	if err := errors.CheckNumericalStability("GNGD.Delta", []float64{eps, nu}, r.step); err != nil {
		return nil, err
	}

	if eps <= 0 && !r.warned {
		w := errors.NewRegularizationWarning(r.Name(), eps, r.step)
		errors.Warn(w)
		r.logger.Warn("regularization term became non-positive",
			log.RegularizationKey, eps,
			log.IterationKey, r.step,
			log.ErrorCodeKey, log.ErrorRegularization,
		)
	}
	r.warned = eps <= 0
	r.eps = eps

	delta := mat.NewVecDense(x.Len(), nil)
	delta.ScaleVec(nu*e, x)
	r.lastE = e
	r.lastX.CopyVec(x)
	r.step++
	return delta, nil
}

// Reset implements LearningRule.
func (r *GNGDRule) Reset() {
	r.eps = r.eps0
	r.lastE = 0
	r.lastX.Zero()
	r.step = 0
	r.warned = false
}

// Clone implements LearningRule.
func (r *GNGDRule) Clone() LearningRule {
	c := *r
	c.lastX = mat.VecDenseCopyOf(r.lastX)
	return &c
}

// Params implements LearningRule. eps is the current, adapted value.
func (r *GNGDRule) Params() map[string]float64 {
	return map[string]float64{
		"mu":       r.mu,
		"ro":       r.ro,
		"eps":      r.eps,
		"eps_init": r.eps0,
	}
}

// State implements StatefulRule.
func (r *GNGDRule) State() map[string][]float64 {
	return map[string][]float64{
		"last_e": {r.lastE},
		"last_x": mat.Col(nil, 0, r.lastX),
	}
}

// Restore implements StatefulRule.
func (r *GNGDRule) Restore(params map[string]float64, state map[string][]float64) error {
	next := *r
	for name, dst := range map[string]*float64{
		"mu": &next.mu, "ro": &next.ro, "eps": &next.eps, "eps_init": &next.eps0,
	} {
		if v, ok := params[name]; ok {
			if err := validateFinite(name, v); err != nil {
				return err
			}
			*dst = v
		}
	}
	if v, ok := state["last_e"]; ok {
		if len(v) != 1 {
			return errors.NewDimensionError("GNGD.Restore(last_e)", 1, len(v), 1)
		}
		next.lastE = v[0]
	}
	lastX := mat.VecDenseCopyOf(r.lastX)
	if v, ok := state["last_x"]; ok {
		if len(v) != lastX.Len() {
			return errors.NewDimensionError("GNGD.Restore(last_x)", lastX.Len(), len(v), 1)
		}
		lastX = mat.NewVecDense(len(v), append([]float64(nil), v...))
	}
	next.lastX = lastX
	next.warned = next.eps <= 0
	next.step = 0
	*r = next
	return nil
}

// FilterGNGD is an adaptive filter driven by GNGDRule.
type FilterGNGD struct {
	*AdaptiveFilter
	gngd *GNGDRule
}

// NewGNGD creates a GNGD filter. Defaults: mu=1, eps=1, ro=0.1, random
// initial weights.
//
//	f, err := filters.NewGNGD(4, filters.WithMu(0.1), filters.WithWeights(filters.Zeros()))
func NewGNGD(n int, opts ...Option) (*FilterGNGD, error) {
	cfg := newConfig(Config{
		Mu:          DefaultGNGDMu,
		Eps:         DefaultGNGDEps,
		Ro:          DefaultGNGDRo,
		Weights:     Random(),
		RandomState: -1,
	}, opts)
	rule, err := NewGNGDRule(n, cfg.Mu, cfg.Eps, cfg.Ro)
	if err != nil {
		return nil, err
	}
	core, err := newAdaptiveFilter(n, rule, cfg)
	if err != nil {
		return nil, err
	}
	rule.logger = core.logger
	return &FilterGNGD{AdaptiveFilter: core, gngd: rule}, nil
}

// Eps returns the current regularisation term.
func (f *FilterGNGD) Eps() float64 { return f.gngd.Eps() }

// Clone returns an independent copy.
func (f *FilterGNGD) Clone() *FilterGNGD {
	core := f.AdaptiveFilter.Clone()
	return &FilterGNGD{AdaptiveFilter: core, gngd: core.rule.(*GNGDRule)}
}
