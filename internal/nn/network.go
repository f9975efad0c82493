package nn

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"pilotnet/internal/model"
)

// Learning-rate bounds. Every adjustment clamps into this range so a
// long run of rejected epochs can never stall or diverge the rate.
const (
	AlphaMin = 0.01
	AlphaMax = 0.9
)

// ErrDimension reports an input or target vector whose length disagrees
// with the topology. The check happens before any weight is touched.
var ErrDimension = errors.New("vector length does not match topology")

// Network is a sigmoid feedforward net over a fixed topology. It owns
// its WeightStore exclusively: one trainer writes during training, and
// only after training ends is concurrent read-only inference safe.
type Network struct {
	topology model.Topology
	store    *WeightStore
	alpha    float64
}

// New builds a network with small uniform random weights in
// [-1/sqrt(fanIn), 1/sqrt(fanIn)], deterministic under seed. An alpha
// outside [AlphaMin, AlphaMax] is clamped, not rejected.
func New(t model.Topology, alpha float64, seed int64) (*Network, error) {
	if t.InputCount < 1 || t.OutputCount < 1 || t.HiddenLayers < 1 || t.NeuronsPerHidden < 1 {
		return nil, fmt.Errorf("topology counts must all be >= 1: %+v", t)
	}

	src := rand.NewSource(uint64(seed))
	store := newWeightStore(layerShapes(t))
	for i, w := range store.weights {
		rows, cols := w.Dims()
		dist := distuv.Uniform{
			Min: -1 / math.Sqrt(float64(cols)),
			Max: 1 / math.Sqrt(float64(cols)),
			Src: src,
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				w.Set(r, c, dist.Rand())
			}
		}
		for r := 0; r < rows; r++ {
			store.biases[i].SetVec(r, dist.Rand())
		}
	}

	return &Network{topology: t, store: store, alpha: clampAlpha(alpha)}, nil
}

func (n *Network) Topology() model.Topology {
	return n.topology
}

// Alpha is the read-only view of the learning rate; the trainer owns
// the only writer.
func (n *Network) Alpha() float64 {
	return n.alpha
}

// BumpAlpha shifts the learning rate by delta, clamped unconditionally.
func (n *Network) BumpAlpha(delta float64) {
	n.alpha = clampAlpha(n.alpha + delta)
}

// Forward evaluates sigmoid(W·x + b) layer by layer and returns the
// output activations, each in (0, 1).
func (n *Network) Forward(inputs []float64) ([]float64, error) {
	if len(inputs) != n.topology.InputCount {
		return nil, fmt.Errorf("%w: inputs got=%d want=%d", ErrDimension, len(inputs), n.topology.InputCount)
	}
	activations := n.forward(inputs)
	return vecSlice(activations[len(activations)-1]), nil
}

// forward returns the activation vector of every layer; index 0 is the
// input itself.
func (n *Network) forward(inputs []float64) []*mat.VecDense {
	activations := make([]*mat.VecDense, 0, len(n.store.weights)+1)
	activations = append(activations, mat.NewVecDense(len(inputs), append([]float64(nil), inputs...)))

	for i, w := range n.store.weights {
		rows, _ := w.Dims()
		z := mat.NewVecDense(rows, nil)
		z.MulVec(w, activations[i])
		z.AddVec(z, n.store.biases[i])
		for r := 0; r < rows; r++ {
			z.SetVec(r, Sigmoid(z.AtVec(r)))
		}
		activations = append(activations, z)
	}
	return activations
}

// StepBackprop runs one forward pass and immediately applies a single
// online gradient update (weight += alpha * gradient) against targets.
// It returns the pre-update prediction, so the caller's accumulated
// error matches the outputs this update was computed from.
func (n *Network) StepBackprop(inputs, targets []float64) ([]float64, error) {
	if len(inputs) != n.topology.InputCount {
		return nil, fmt.Errorf("%w: inputs got=%d want=%d", ErrDimension, len(inputs), n.topology.InputCount)
	}
	if len(targets) != n.topology.OutputCount {
		return nil, fmt.Errorf("%w: targets got=%d want=%d", ErrDimension, len(targets), n.topology.OutputCount)
	}

	activations := n.forward(inputs)
	last := len(activations) - 1
	predicted := vecSlice(activations[last])

	delta := mat.NewVecDense(n.topology.OutputCount, nil)
	for r := 0; r < n.topology.OutputCount; r++ {
		y := activations[last].AtVec(r)
		delta.SetVec(r, (targets[r]-y)*SigmoidPrime(y))
	}

	for layer := len(n.store.weights) - 1; layer >= 0; layer-- {
		w := n.store.weights[layer]
		rows, cols := w.Dims()

		// Propagate the error before updating w so the upstream delta
		// is computed against the weights the forward pass used.
		var next *mat.VecDense
		if layer > 0 {
			next = mat.NewVecDense(cols, nil)
			next.MulVec(w.T(), delta)
			for r := 0; r < cols; r++ {
				y := activations[layer].AtVec(r)
				next.SetVec(r, next.AtVec(r)*SigmoidPrime(y))
			}
		}

		grad := mat.NewDense(rows, cols, nil)
		grad.Outer(n.alpha, delta, activations[layer])
		w.Add(w, grad)
		n.store.biases[layer].AddScaledVec(n.store.biases[layer], n.alpha, delta)

		delta = next
	}

	return predicted, nil
}

// Snapshot copies the current weights, the unit of epoch rollback.
func (n *Network) Snapshot() *WeightStore {
	return n.store.Clone()
}

// Restore replaces the network's weights with a copy of store. Shapes
// are validated first; on mismatch the current weights are untouched.
func (n *Network) Restore(store *WeightStore) error {
	if store == nil || !n.store.sameShape(store) {
		return ErrTopologyMismatch
	}
	n.store = store.Clone()
	return nil
}

func clampAlpha(alpha float64) float64 {
	if alpha < AlphaMin {
		return AlphaMin
	}
	if alpha > AlphaMax {
		return AlphaMax
	}
	return alpha
}

func vecSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
