package model

import (
	"encoding/json"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

// SnapshotVersion is written into every FilterWeights and checked on import.
const SnapshotVersion = "1"

// FilterWeights はフィルタの重みと学習則の状態を表す構造体（シリアライゼーション用）
type FilterWeights struct {
	// Kind はフィルタの種類（GNGD, AP等）
	Kind string `json:"kind"`

	// Version はスナップショット形式のバージョン（互換性チェック用）
	Version string `json:"version"`

	// N はフィルタ長
	N int `json:"n"`

	// Coefficients は現在の重みベクトル
	Coefficients []float64 `json:"coefficients"`

	// Hyperparameters は mu, eps, ro, order などのスカラー設定
	Hyperparameters map[string]float64 `json:"hyperparameters"`

	// State は学習則の内部状態（直前の入力、スライディングウィンドウ等）
	State map[string][]float64 `json:"state,omitempty"`
}

// ToJSON はFilterWeightsをJSON形式にシリアライズ
func (fw *FilterWeights) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(fw, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal filter weights")
	}
	return data, nil
}

// FromJSON はJSON形式からFilterWeightsをデシリアライズ
func (fw *FilterWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, fw); err != nil {
		return errors.Wrap(err, "unmarshal filter weights")
	}
	return nil
}

// Validate はFilterWeightsの妥当性を検証
func (fw *FilterWeights) Validate() error {
	if fw.Kind == "" {
		return errors.NewValidationError("kind", "is required", fw.Kind)
	}
	if fw.Version != SnapshotVersion {
		return errors.NewValidationError("version", "unsupported snapshot version", fw.Version)
	}
	if fw.N <= 0 {
		return errors.NewValidationError("n", "must be positive", fw.N)
	}
	if len(fw.Coefficients) != fw.N {
		return errors.NewDimensionError("FilterWeights.Validate", fw.N, len(fw.Coefficients), 1)
	}
	if err := errors.CheckNumericalStability("FilterWeights.Coefficients", fw.Coefficients, 0); err != nil {
		return err
	}
	for name, v := range fw.Hyperparameters {
		if err := errors.CheckScalar("FilterWeights.Hyperparameters."+name, v, 0); err != nil {
			return err
		}
	}
	return nil
}

// Clone はFilterWeightsのディープコピーを作成
func (fw *FilterWeights) Clone() *FilterWeights {
	clone := &FilterWeights{
		Kind:            fw.Kind,
		Version:         fw.Version,
		N:               fw.N,
		Coefficients:    append([]float64(nil), fw.Coefficients...),
		Hyperparameters: make(map[string]float64, len(fw.Hyperparameters)),
		State:           make(map[string][]float64, len(fw.State)),
	}
	for k, v := range fw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range fw.State {
		clone.State[k] = append([]float64(nil), v...)
	}
	return clone
}
