package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/adafilt/pkg/errors"
)

func TestInputFromHistory(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}

	x, err := InputFromHistory(a, 3, false)
	require.NoError(t, err)
	want := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		2, 3, 4,
		3, 4, 5,
	})
	assert.True(t, mat.Equal(want, x))

	xb, err := InputFromHistory(a, 4, true)
	require.NoError(t, err)
	want = mat.NewDense(2, 5, []float64{
		1, 2, 3, 4, 1,
		2, 3, 4, 5, 1,
	})
	assert.True(t, mat.Equal(want, xb))

	// 入力系列とはメモリを共有しない
	x.Set(0, 0, 100)
	assert.Equal(t, 1.0, a[0])
}

func TestInputFromHistoryErrors(t *testing.T) {
	_, err := InputFromHistory([]float64{1, 2}, 0, false)
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))

	_, err = InputFromHistory([]float64{1, 2}, 3, false)
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 0, dimErr.Axis)
}

func TestRows(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	rows := Rows(x)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, rows)

	rows[0][0] = 9
	assert.Equal(t, 1.0, x.At(0, 0))
}
