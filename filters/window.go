package filters

import (
	"gonum.org/v1/gonum/mat"
)

// window holds the last order (x, d) pairs of an n-tap filter.
//
// Columns are stored in a ring: push overwrites the oldest column and moves
// head onto it, so logical slot j (0 = most recent) lives in physical
// column (head+j) mod order.
type window struct {
	x     *mat.Dense    // n × order
	d     *mat.VecDense // order
	head  int
	order int
	col   []float64
}

func newWindow(n, order int) *window {
	return &window{
		x:     mat.NewDense(n, order, nil),
		d:     mat.NewVecDense(order, nil),
		order: order,
		col:   make([]float64, n),
	}
}

// push stores (x, d) as the most recent pair. The returned func undoes the
// push.
func (w *window) push(x mat.Vector, d float64) (undo func()) {
	head := (w.head - 1 + w.order) % w.order
	oldCol := mat.Col(nil, head, w.x)
	oldD := w.d.AtVec(head)
	oldHead := w.head

	for i := range w.col {
		w.col[i] = x.AtVec(i)
	}
	w.x.SetCol(head, w.col)
	w.d.SetVec(head, d)
	w.head = head

	return func() {
		w.x.SetCol(head, oldCol)
		w.d.SetVec(head, oldD)
		w.head = oldHead
	}
}

// slot maps a logical slot to its physical column.
func (w *window) slot(j int) int {
	return (w.head + j) % w.order
}

// logical returns copies of the window in most-recent-first order.
func (w *window) logical() (*mat.Dense, []float64) {
	n, _ := w.x.Dims()
	x := mat.NewDense(n, w.order, nil)
	d := make([]float64, w.order)
	for j := 0; j < w.order; j++ {
		p := w.slot(j)
		x.SetCol(j, mat.Col(nil, p, w.x))
		d[j] = w.d.AtVec(p)
	}
	return x, d
}

// load replaces the window with a logical (most-recent-first) view. x is
// row-major n × order.
func (w *window) load(x, d []float64) {
	n, _ := w.x.Dims()
	w.x = mat.NewDense(n, w.order, append([]float64(nil), x...))
	w.d = mat.NewVecDense(w.order, append([]float64(nil), d...))
	w.head = 0
}

func (w *window) reset() {
	w.x.Zero()
	w.d.Zero()
	w.head = 0
}

func (w *window) clone() *window {
	return &window{
		x:     mat.DenseCopyOf(w.x),
		d:     mat.VecDenseCopyOf(w.d),
		head:  w.head,
		order: w.order,
		col:   make([]float64, len(w.col)),
	}
}
