// Package errors はadafilt全体のエラーハンドリングと警告システムを提供します。
// 全てのエラー型はcockroachdb/errorsでスタックトレースを付与して返され、
// errors.As で型として取り出せます。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("adafilt-Warning: %v\n", w)
	}
	// set by pkg/log; kept as a func to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the process-wide warning handler and returns the
// previous one so callers (mostly tests) can restore it.
func SetWarningHandler(handler func(w error)) func(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	prev := warningHandler
	warningHandler = handler
	return prev
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// RegularizationWarning is raised when an adaptive regularization term
// (GNGD's eps) leaves the positive half-line. The filter keeps running with
// the drifted value.
type RegularizationWarning struct {
	Rule      string
	Value     float64
	Iteration int
}

func (w *RegularizationWarning) Error() string {
	return fmt.Sprintf("%s: regularization term became non-positive (eps=%g) at step %d; the filter may be unstable",
		w.Rule, w.Value, w.Iteration)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *RegularizationWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("rule", w.Rule).
		Float64("eps", w.Value).
		Int("iteration", w.Iteration).
		Str("type", "RegularizationWarning")
}

// NewRegularizationWarning は新しいRegularizationWarningを作成します。
func NewRegularizationWarning(rule string, value float64, iteration int) *RegularizationWarning {
	return &RegularizationWarning{Rule: rule, Value: value, Iteration: iteration}
}

// ConditionWarning is raised when a linear system solved during adaptation is
// ill-conditioned. The solution is still used.
type ConditionWarning struct {
	Op        string
	Condition float64
}

func (w *ConditionWarning) Error() string {
	return fmt.Sprintf("%s: ill-conditioned system (condition number %g); results may be inaccurate", w.Op, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConditionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Float64("condition", w.Condition).
		Str("type", "ConditionWarning")
}

// NewConditionWarning は新しいConditionWarningを作成します。
func NewConditionWarning(op string, condition float64) *ConditionWarning {
	return &ConditionWarning{Op: op, Condition: condition}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// InvalidWeightSpecError は初期重みの指定が解釈できない場合のエラーです。
// 未知のポリシー名、長さの不一致、数値に変換できない要素のいずれかです。
type InvalidWeightSpecError struct {
	Spec   interface{}
	Reason string
}

func (e *InvalidWeightSpecError) Error() string {
	return fmt.Sprintf("adafilt: impossible to understand the initial weights %v: %s", e.Spec, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidWeightSpecError) MarshalZerologObject(event *zerolog.Event) {
	event.Interface("spec", e.Spec).
		Str("reason", e.Reason).
		Str("type", "InvalidWeightSpecError")
}

// NewInvalidWeightSpecError は新しいInvalidWeightSpecErrorを作成し、スタックトレースを付与します。
func NewInvalidWeightSpecError(spec interface{}, reason string) error {
	return errors.WithStack(&InvalidWeightSpecError{Spec: spec, Reason: reason})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for samples, 1 for features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "samples"
	}
	return fmt.Sprintf("adafilt: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ConversionError is returned when batch inputs cannot be turned into a
// dense numeric array, e.g. ragged or empty rows.
type ConversionError struct {
	Op     string
	Input  string // "d" or "x"
	Row    int
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("adafilt: %s: impossible to convert %s to a numeric array (row %d): %s", e.Op, e.Input, e.Row, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConversionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("input", e.Input).
		Int("row", e.Row).
		Str("reason", e.Reason).
		Str("type", "ConversionError")
}

// NewConversionError は新しいConversionErrorを作成し、スタックトレースを付与します。
func NewConversionError(op, input string, row int, reason string) error {
	return errors.WithStack(&ConversionError{Op: op, Input: input, Row: row, Reason: reason})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("adafilt: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ModelError はフィルタの保存・復元など、モデル単位の操作に関するエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("adafilt: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("adafilt: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf、特異行列などを検出します。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("adafilt: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Floats64("values", e.Values).
		Int("iteration", e.Iteration).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrNotFitted は学習前のスケーラー等を使用した場合のエラーです。
	ErrNotFitted = New("not fitted")
)
