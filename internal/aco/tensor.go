package aco

import "gorgonia.org/tensor"

// pheromoneTensor wraps a *tensor.Dense of shape (N, D, 2), the dense
// rank-3 layout spec §9's design notes call for pheromone/heuristic
// storage, grounded on the teacher's tensor.New(WithBacking, WithShape)
// usage in internal/analytics/ml/predictor.go.
type pheromoneTensor struct {
	dense *tensor.Dense
	n, d  int
}

func newPheromoneTensor(n, d int, fill float64) *pheromoneTensor {
	backing := make([]float64, n*d*2)
	for i := range backing {
		backing[i] = fill
	}
	dense := tensor.New(tensor.WithShape(n, d, 2), tensor.WithBacking(backing))
	return &pheromoneTensor{dense: dense, n: n, d: d}
}

func (t *pheromoneTensor) At(i, day, slot int) float64 {
	v, err := t.dense.At(i, day, slot)
	if err != nil {
		return 0
	}
	return v.(float64)
}

func (t *pheromoneTensor) Set(i, day, slot int, v float64) {
	_ = t.dense.SetAt(v, i, day, slot)
}

func (t *pheromoneTensor) Add(i, day, slot int, delta float64) {
	t.Set(i, day, slot, t.At(i, day, slot)+delta)
}

// Scale multiplies every cell by factor, implementing evaporation.
func (t *pheromoneTensor) Scale(factor float64) {
	for i := 0; i < t.n; i++ {
		for day := 0; day < t.d; day++ {
			for slot := 0; slot < 2; slot++ {
				t.Set(i, day, slot, t.At(i, day, slot)*factor)
			}
		}
	}
}
