package filters

import (
	"github.com/YuminosukeSato/adafilt/pkg/errors"
	"github.com/YuminosukeSato/adafilt/pkg/log"
)

// Config holds the construction parameters shared by all filters. Fields a
// learning rule does not use are ignored.
type Config struct {
	// Mu is the learning rate (step size).
	Mu float64
	// Weights is the initial weight specification.
	Weights WeightSpec
	// Eps is the regularisation term: GNGD's initial compensation term, AP's
	// fixed offset covariance.
	Eps float64
	// Ro is GNGD's step size adaptation parameter.
	Ro float64
	// Order is AP's projection order.
	Order int
	// RandomState seeds the "random" weight policy; negative means unseeded.
	RandomState int64
	// Sampler overrides the normal sampler entirely.
	Sampler NormalSampler
	// Logger receives run and warning records.
	Logger log.Logger
}

// Option は設定オプション
type Option func(*Config)

// WithMu sets the learning rate.
func WithMu(mu float64) Option {
	return func(c *Config) { c.Mu = mu }
}

// WithWeights sets the initial weight specification.
func WithWeights(spec WeightSpec) Option {
	return func(c *Config) { c.Weights = spec }
}

// WithEps sets the regularisation term.
func WithEps(eps float64) Option {
	return func(c *Config) { c.Eps = eps }
}

// WithRo sets GNGD's step size adaptation parameter.
func WithRo(ro float64) Option {
	return func(c *Config) { c.Ro = ro }
}

// WithOrder sets AP's projection order.
func WithOrder(order int) Option {
	return func(c *Config) { c.Order = order }
}

// WithRandomState makes random initialisation reproducible.
func WithRandomState(seed int64) Option {
	return func(c *Config) { c.RandomState = seed }
}

// WithSampler injects the normal sampler used by the "random" policy.
func WithSampler(s NormalSampler) Option {
	return func(c *Config) { c.Sampler = s }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func newConfig(defaults Config, opts []Option) Config {
	cfg := defaults
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c Config) sampler() NormalSampler {
	if c.Sampler != nil {
		return c.Sampler
	}
	if c.RandomState >= 0 {
		return NewNormalSampler(uint64(c.RandomState))
	}
	return defaultSampler()
}

func (c Config) logger() log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.GetLoggerWithName("filters")
}

func validateFinite(name string, v float64) error {
	if err := errors.CheckScalar(name, v, 0); err != nil {
		return errors.NewValidationError(name, "must be finite", v)
	}
	return nil
}

// Validate checks the scalar hyperparameters shared by every variant.
func (c Config) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{{"mu", c.Mu}, {"eps", c.Eps}, {"ro", c.Ro}} {
		if err := validateFinite(p.name, p.v); err != nil {
			return err
		}
	}
	if c.Order < 0 {
		return errors.NewValidationError("order", "must not be negative", c.Order)
	}
	return nil
}
