package nn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pilotnet/internal/model"
)

// The weight line is a versioned contract: version token, topology,
// then per layer the row-major weights followed by the biases, all
// space delimited. Values are formatted with the shortest encoding that
// parses back bit-for-bit.
const codecVersionToken = "wv1"

var (
	// ErrMalformed reports a weight line that does not follow the v1
	// schema. Callers typically fall back to fresh initialization.
	ErrMalformed = errors.New("malformed weight encoding")
	// ErrCodecVersion reports a weight line from a different schema
	// version, distinguishable from plain corruption.
	ErrCodecVersion = errors.New("unsupported weight encoding version")
)

// Marshal encodes every weight and bias of the network as a single
// text line suitable for checkpointing.
func (n *Network) Marshal() string {
	t := n.topology
	fields := make([]string, 0, 2+n.store.ParamCount())
	fields = append(fields, codecVersionToken, formatTopology(t))
	for i, w := range n.store.weights {
		rows, cols := w.Dims()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				fields = append(fields, strconv.FormatFloat(w.At(r, c), 'g', -1, 64))
			}
		}
		for r := 0; r < n.store.biases[i].Len(); r++ {
			fields = append(fields, strconv.FormatFloat(n.store.biases[i].AtVec(r), 'g', -1, 64))
		}
	}
	return strings.Join(fields, " ")
}

// Unmarshal parses a line produced by Marshal into a fresh WeightStore.
// The encoded topology must match the network's; the caller decides
// when to Restore the result.
func (n *Network) Unmarshal(line string) (*WeightStore, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: %d fields", ErrMalformed, len(fields))
	}
	if fields[0] != codecVersionToken {
		return nil, fmt.Errorf("%w: %q", ErrCodecVersion, fields[0])
	}
	encoded, err := parseTopology(fields[1])
	if err != nil {
		return nil, err
	}
	if encoded != n.topology {
		return nil, fmt.Errorf("%w: encoded %s, network %s",
			ErrTopologyMismatch, fields[1], formatTopology(n.topology))
	}

	store := newWeightStore(layerShapes(n.topology))
	values := fields[2:]
	if len(values) != store.ParamCount() {
		return nil, fmt.Errorf("%w: got %d parameters, want %d", ErrMalformed, len(values), store.ParamCount())
	}

	idx := 0
	next := func() (float64, error) {
		v, err := strconv.ParseFloat(values[idx], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: parameter %d: %q", ErrMalformed, idx, values[idx])
		}
		idx++
		return v, nil
	}
	for i, w := range store.weights {
		rows, cols := w.Dims()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				v, err := next()
				if err != nil {
					return nil, err
				}
				w.Set(r, c, v)
			}
		}
		for r := 0; r < store.biases[i].Len(); r++ {
			v, err := next()
			if err != nil {
				return nil, err
			}
			store.biases[i].SetVec(r, v)
		}
	}
	return store, nil
}

func formatTopology(t model.Topology) string {
	return fmt.Sprintf("%d:%d:%d:%d", t.InputCount, t.OutputCount, t.HiddenLayers, t.NeuronsPerHidden)
}

func parseTopology(field string) (model.Topology, error) {
	parts := strings.Split(field, ":")
	if len(parts) != 4 {
		return model.Topology{}, fmt.Errorf("%w: topology %q", ErrMalformed, field)
	}
	counts := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 1 {
			return model.Topology{}, fmt.Errorf("%w: topology %q", ErrMalformed, field)
		}
		counts[i] = v
	}
	return model.Topology{
		InputCount:       counts[0],
		OutputCount:      counts[1],
		HiddenLayers:     counts[2],
		NeuronsPerHidden: counts[3],
	}, nil
}
