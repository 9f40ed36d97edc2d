package errors

import (
	"math"
)

// CheckNumericalStability はvaluesにNaNまたはInfが含まれていれば
// NumericalInstabilityErrorを返します。学習則は状態を書き換える前にこれを呼び、
// 発散したステップでフィルタの重みやメモリが壊れないようにします。
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// CheckScalar is CheckNumericalStability for one value, e.g. GNGD's step
// size nu or its regularization term. iteration is the rule's step count.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}
