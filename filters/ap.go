package filters

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
	"github.com/YuminosukeSato/adafilt/pkg/log"
)

// Affine projection defaults.
const (
	DefaultAPMu    = 0.1
	DefaultAPOrder = 5
	DefaultAPEps   = 0.001
)

// ProjectionRule is the affine projection rule. It keeps the last order
// inputs X (n × order) and targets d_mem and updates with
//
//	e_mem = d_mem − Xᵀw
//	Δw    = mu · X (XᵀX + eps·I)⁻¹ e_mem
//
// The a priori error of the newest sample is e_mem[0], which is what the
// filter reports.
type ProjectionRule struct {
	mu, eps float64
	n       int
	order   int
	win     *window

	ide    *mat.Dense
	ideEps *mat.Dense

	step   int
	logger log.Logger
}

// NewProjectionRule creates the rule for n-tap filters.
func NewProjectionRule(n, order int, mu, eps float64) (*ProjectionRule, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "filter length must be positive", n)
	}
	if order <= 0 {
		return nil, errors.NewValidationError("order", "must be positive", order)
	}
	cfg := Config{Mu: mu, Eps: eps}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &ProjectionRule{
		mu:     mu,
		n:      n,
		logger: log.GetLoggerWithName("filters"),
	}
	r.resize(order)
	r.setEps(eps)
	return r, nil
}

func (r *ProjectionRule) resize(order int) {
	r.order = order
	r.win = newWindow(r.n, order)
	r.ide = mat.NewDense(order, order, nil)
	for i := 0; i < order; i++ {
		r.ide.Set(i, i, 1)
	}
}

func (r *ProjectionRule) setEps(eps float64) {
	r.eps = eps
	r.ideEps = mat.NewDense(r.order, r.order, nil)
	r.ideEps.Scale(eps, r.ide)
}

// Name implements LearningRule.
func (r *ProjectionRule) Name() string { return "AP" }

// Order returns the projection order.
func (r *ProjectionRule) Order() int { return r.order }

// Delta implements LearningRule. It pushes (x, d) into the window; if the
// update cannot be computed the window is left as it was.
func (r *ProjectionRule) Delta(w mat.Vector, d, _ float64, x *mat.VecDense) (*mat.VecDense, error) {
	undo := r.win.push(x, d)

	var yMem mat.VecDense
	yMem.MulVec(r.win.x.T(), w)
	eMem := mat.NewVecDense(r.order, nil)
	eMem.SubVec(r.win.d, &yMem)

	dw, err := r.Project(eMem, r.win.x)
	if err != nil {
		undo()
		return nil, err
	}
	dw.ScaleVec(r.mu, dw)
	r.step++
	return dw, nil
}

// Project returns X (XᵀX + eps·I)⁻¹ e for a window X of order columns.
// The result does not depend on the order of the columns as long as e is
// permuted the same way.
func (r *ProjectionRule) Project(e mat.Vector, x mat.Matrix) (*mat.VecDense, error) {
	n, order := x.Dims()
	if order != r.order || e.Len() != r.order {
		return nil, errors.NewDimensionError("AP.Project", r.order, e.Len(), 0)
	}

	var a mat.Dense
	a.Mul(x.T(), x)
	a.Add(&a, r.ideEps)

	var z mat.Dense
	if err := z.Solve(&a, r.ide); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			r.logger.Error("projection system is singular", err,
				log.IterationKey, r.step,
				log.ErrorCodeKey, log.ErrorSingularMatrix,
			)
			return nil, errors.NewNumericalInstabilityError("AP.Project", []float64{r.eps}, r.step)
		}
		errors.Warn(errors.NewConditionWarning("AP.Project", float64(cond)))
		r.logger.Warn("ill-conditioned projection system",
			"condition", float64(cond),
			log.IterationKey, r.step,
		)
	}

	var ze mat.VecDense
	ze.MulVec(&z, e)
	dw := mat.NewVecDense(n, nil)
	dw.MulVec(x, &ze)
	return dw, nil
}

// Window returns copies of the input window (n × order) and the target
// window, most recent first.
func (r *ProjectionRule) Window() (*mat.Dense, []float64) {
	return r.win.logical()
}

// Reset implements LearningRule.
func (r *ProjectionRule) Reset() {
	r.win.reset()
	r.step = 0
}

// Clone implements LearningRule.
func (r *ProjectionRule) Clone() LearningRule {
	c := *r
	c.win = r.win.clone()
	c.ide = mat.DenseCopyOf(r.ide)
	c.ideEps = mat.DenseCopyOf(r.ideEps)
	return &c
}

// Params implements LearningRule.
func (r *ProjectionRule) Params() map[string]float64 {
	return map[string]float64{
		"mu":    r.mu,
		"eps":   r.eps,
		"order": float64(r.order),
	}
}

// State implements StatefulRule. x_mem is the logical window flattened
// row-major.
func (r *ProjectionRule) State() map[string][]float64 {
	x, d := r.win.logical()
	return map[string][]float64{
		"x_mem": x.RawMatrix().Data,
		"d_mem": d,
	}
}

// Restore implements StatefulRule. A different order resizes the window.
func (r *ProjectionRule) Restore(params map[string]float64, state map[string][]float64) error {
	mu, eps, order := r.mu, r.eps, r.order
	if v, ok := params["mu"]; ok {
		if err := validateFinite("mu", v); err != nil {
			return err
		}
		mu = v
	}
	if v, ok := params["eps"]; ok {
		if err := validateFinite("eps", v); err != nil {
			return err
		}
		eps = v
	}
	if v, ok := params["order"]; ok {
		if v != math.Trunc(v) || v < 1 {
			return errors.NewValidationError("order", "must be a positive integer", v)
		}
		order = int(v)
	}

	x, hasX := state["x_mem"]
	d, hasD := state["d_mem"]
	if hasX != hasD {
		return errors.NewValidationError("state", "x_mem and d_mem must be restored together", nil)
	}
	if hasX {
		if len(x) != r.n*order {
			return errors.NewDimensionError("AP.Restore(x_mem)", r.n*order, len(x), 1)
		}
		if len(d) != order {
			return errors.NewDimensionError("AP.Restore(d_mem)", order, len(d), 1)
		}
	} else if order != r.order {
		return errors.NewValidationError("state", "changing order requires a window", order)
	}

	r.mu = mu
	if order != r.order {
		r.resize(order)
	}
	r.setEps(eps)
	if hasX {
		r.win.load(x, d)
	}
	r.step = 0
	return nil
}

// FilterAP is an adaptive filter driven by ProjectionRule.
type FilterAP struct {
	*AdaptiveFilter
	ap *ProjectionRule
}

// NewAP creates an affine projection filter. Defaults: mu=0.1, order=5,
// eps=0.001, random initial weights.
func NewAP(n int, opts ...Option) (*FilterAP, error) {
	cfg := newConfig(Config{
		Mu:          DefaultAPMu,
		Eps:         DefaultAPEps,
		Order:       DefaultAPOrder,
		Weights:     Random(),
		RandomState: -1,
	}, opts)
	rule, err := NewProjectionRule(n, cfg.Order, cfg.Mu, cfg.Eps)
	if err != nil {
		return nil, err
	}
	core, err := newAdaptiveFilter(n, rule, cfg)
	if err != nil {
		return nil, err
	}
	core.logger = core.logger.With(log.WindowKey, cfg.Order)
	rule.logger = core.logger
	return &FilterAP{AdaptiveFilter: core, ap: rule}, nil
}

// Order returns the projection order.
func (f *FilterAP) Order() int { return f.ap.Order() }

// Window returns copies of the input window (n × order) and the target
// window, most recent first.
func (f *FilterAP) Window() (*mat.Dense, []float64) { return f.ap.Window() }

// Clone returns an independent copy.
func (f *FilterAP) Clone() *FilterAP {
	core := f.AdaptiveFilter.Clone()
	return &FilterAP{AdaptiveFilter: core, ap: core.rule.(*ProjectionRule)}
}
