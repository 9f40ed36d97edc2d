package filters

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/adafilt/core/model"
	"github.com/YuminosukeSato/adafilt/pkg/errors"
	"github.com/YuminosukeSato/adafilt/pkg/log"
)

// ExportWeights captures the weights, hyperparameters and, for stateful
// rules, the rule memory.
func (f *AdaptiveFilter) ExportWeights() (*model.FilterWeights, error) {
	fw := &model.FilterWeights{
		Kind:            f.rule.Name(),
		Version:         model.SnapshotVersion,
		N:               f.n,
		Coefficients:    f.Weights(),
		Hyperparameters: f.rule.Params(),
	}
	if sr, ok := f.rule.(StatefulRule); ok {
		fw.State = sr.State()
	}
	return fw, nil
}

// ImportWeights restores a snapshot taken from a filter of the same kind and
// length. Nothing changes if the snapshot is rejected.
func (f *AdaptiveFilter) ImportWeights(fw *model.FilterWeights) error {
	if fw == nil {
		return errors.NewValidationError("weights", "snapshot must not be nil", nil)
	}
	if err := fw.Validate(); err != nil {
		return err
	}
	if fw.Kind != f.rule.Name() {
		return errors.NewModelError("ImportWeights", "kind mismatch",
			errors.Newf("snapshot of %s cannot be loaded into %s", fw.Kind, f.rule.Name()))
	}
	if fw.N != f.n {
		return errors.NewDimensionError("ImportWeights", f.n, fw.N, 1)
	}
	if sr, ok := f.rule.(StatefulRule); ok {
		if err := sr.Restore(fw.Hyperparameters, fw.State); err != nil {
			return errors.Wrap(err, "restore rule state")
		}
	}
	f.w = mat.NewVecDense(f.n, append([]float64(nil), fw.Coefficients...))
	return nil
}

// Save writes the filter snapshot to path in gob format.
func (f *AdaptiveFilter) Save(path string) error {
	fw, err := f.ExportWeights()
	if err != nil {
		return err
	}
	if err := model.SaveModel(fw, path); err != nil {
		f.logger.Error("Save failed", err, log.OperationKey, log.OperationSave)
		return err
	}
	f.logger.Info("Filter saved", log.OperationKey, log.OperationSave, "path", path)
	return nil
}

// Load restores a snapshot written by Save.
func (f *AdaptiveFilter) Load(path string) error {
	var fw model.FilterWeights
	if err := model.LoadModel(&fw, path); err != nil {
		return err
	}
	if err := f.ImportWeights(&fw); err != nil {
		f.logger.Error("Load failed", err, log.OperationKey, log.OperationLoad)
		return err
	}
	f.logger.Info("Filter loaded", log.OperationKey, log.OperationLoad, "path", path)
	return nil
}
