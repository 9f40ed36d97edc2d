// Standard attribute keys for filter operations. Keys follow a dotted
// hierarchy ("model.name", "data.samples") so records can be filtered by
// prefix.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the filter variant, e.g. "GNGD" or "AP".
	ModelNameKey = "model.name"

	// FilterIDKey identifies one filter instance when several run side by side.
	FilterIDKey = "filter.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of a pretrained run: "training" or "testing".
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey is the number of samples in a batch.
	SamplesKey = "data.samples"

	// FeaturesKey is the filter length n.
	FeaturesKey = "data.features"

	// WindowKey is the projection order of window-based rules.
	WindowKey = "data.window"
)

// Metrics
const (
	DurationMsKey = "perf.duration_ms"

	// MSEKey records the mean squared a priori error of a batch.
	MSEKey = "metrics.mse"

	IterationKey = "training.iteration"
	EpochKey     = "training.epoch"
)

// Hyperparameters
const (
	// LearningRateKey records mu.
	LearningRateKey = "hyperparams.learning_rate"

	// RegularizationKey records eps.
	RegularizationKey = "hyperparams.regularization"

	RandomSeedKey = "config.random_seed"
)

// Error Context
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationAdapt         = "adapt"
	OperationRun           = "run"
	OperationPretrainedRun = "pretrained_run"
	OperationStream        = "stream"
	OperationSave          = "save"
	OperationLoad          = "load"

	PhaseTraining = "training"
	PhaseTesting  = "testing"

	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorInvalidWeights    = "INVALID_WEIGHT_SPEC"
	ErrorConversion        = "CONVERSION_ERROR"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorRegularization    = "REGULARIZATION_DRIFT"
)
