package nn

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"pilotnet/internal/model"
)

// ErrTopologyMismatch reports a weight set whose shape disagrees with
// the owning network's topology. The network's weights are left as-is.
var ErrTopologyMismatch = errors.New("weight store does not match network topology")

// WeightStore holds every trainable parameter of a network: one weight
// matrix (rows = layer outputs, cols = layer inputs) plus one bias
// vector per layer, ordered from the first hidden layer to the output
// layer.
type WeightStore struct {
	weights []*mat.Dense
	biases  []*mat.VecDense
}

type layerShape struct {
	outputs int
	inputs  int
}

func layerShapes(t model.Topology) []layerShape {
	shapes := make([]layerShape, 0, t.HiddenLayers+1)
	in := t.InputCount
	for i := 0; i < t.HiddenLayers; i++ {
		shapes = append(shapes, layerShape{outputs: t.NeuronsPerHidden, inputs: in})
		in = t.NeuronsPerHidden
	}
	shapes = append(shapes, layerShape{outputs: t.OutputCount, inputs: in})
	return shapes
}

func newWeightStore(shapes []layerShape) *WeightStore {
	store := &WeightStore{
		weights: make([]*mat.Dense, len(shapes)),
		biases:  make([]*mat.VecDense, len(shapes)),
	}
	for i, shape := range shapes {
		store.weights[i] = mat.NewDense(shape.outputs, shape.inputs, nil)
		store.biases[i] = mat.NewVecDense(shape.outputs, nil)
	}
	return store
}

// Clone returns a deep copy, the unit of snapshot and rollback.
func (s *WeightStore) Clone() *WeightStore {
	out := &WeightStore{
		weights: make([]*mat.Dense, len(s.weights)),
		biases:  make([]*mat.VecDense, len(s.biases)),
	}
	for i, w := range s.weights {
		out.weights[i] = mat.DenseCopyOf(w)
	}
	for i, b := range s.biases {
		out.biases[i] = mat.VecDenseCopyOf(b)
	}
	return out
}

// LayerCount reports the number of weighted layers.
func (s *WeightStore) LayerCount() int {
	return len(s.weights)
}

// ParamCount reports the total number of trainable parameters. It is a
// pure function of the topology the store was allocated for.
func (s *WeightStore) ParamCount() int {
	total := 0
	for i, w := range s.weights {
		rows, cols := w.Dims()
		total += rows*cols + s.biases[i].Len()
	}
	return total
}

func (s *WeightStore) sameShape(other *WeightStore) bool {
	if other == nil || len(s.weights) != len(other.weights) {
		return false
	}
	for i, w := range s.weights {
		rows, cols := w.Dims()
		otherRows, otherCols := other.weights[i].Dims()
		if rows != otherRows || cols != otherCols {
			return false
		}
		if s.biases[i].Len() != other.biases[i].Len() {
			return false
		}
	}
	return true
}

// Equal reports whether both stores hold bit-identical parameters.
func (s *WeightStore) Equal(other *WeightStore) bool {
	if !s.sameShape(other) {
		return false
	}
	for i, w := range s.weights {
		if !mat.Equal(w, other.weights[i]) {
			return false
		}
		if !mat.Equal(s.biases[i], other.biases[i]) {
			return false
		}
	}
	return true
}
