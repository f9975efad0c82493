package main

import (
	"encoding/json"
	"fmt"
	"os"

	"pilotnet/internal/model"
	pilotapi "pilotnet/pkg/pilotnet"
)

func loadTrainRequestFromConfig(path string) (pilotapi.TrainRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pilotapi.TrainRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return pilotapi.TrainRequest{}, err
	}

	var req pilotapi.TrainRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["dataset"]); ok {
		req.DatasetPath = v
	}
	if v, ok := asInt(raw["epochs"]); ok {
		req.Epochs = v
	}
	if v, ok := asFloat64(raw["alpha"]); ok {
		req.Alpha = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asBool(raw["resume"]); ok {
		req.Resume = v
	}

	var topology model.Topology
	if v, ok := asInt(raw["inputs"]); ok {
		topology.InputCount = v
	}
	if v, ok := asInt(raw["outputs"]); ok {
		topology.OutputCount = v
	}
	if v, ok := asInt(raw["hidden_layers"]); ok {
		topology.HiddenLayers = v
	}
	if v, ok := asInt(raw["neurons_per_hidden"]); ok {
		topology.NeuronsPerHidden = v
	}
	if topology != (model.Topology{}) {
		req.Topology = topology
	}

	return req, nil
}

func loadOrDefaultTrainRequest(configPath string) (pilotapi.TrainRequest, error) {
	if configPath == "" {
		return pilotapi.TrainRequest{}, nil
	}
	req, err := loadTrainRequestFromConfig(configPath)
	if err != nil {
		return pilotapi.TrainRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

type trainFlagValues struct {
	runID   string
	dataset string
	epochs  int
	alpha   float64
	seed    int64
	inputs  int
	outputs int
	hidden  int
	width   int
	resume  bool
}

// applyTrainFlags lets explicitly set flags win over the config file.
func applyTrainFlags(req *pilotapi.TrainRequest, set map[string]bool, values trainFlagValues) {
	if set["run-id"] {
		req.RunID = values.runID
	}
	if set["dataset"] {
		req.DatasetPath = values.dataset
	}
	if set["epochs"] {
		req.Epochs = values.epochs
	}
	if set["alpha"] {
		req.Alpha = values.alpha
	}
	if set["seed"] {
		req.Seed = values.seed
	}
	if set["resume"] {
		req.Resume = values.resume
	}
	if set["inputs"] || set["outputs"] || set["hidden"] || set["width"] {
		topology := req.Topology
		if topology == (model.Topology{}) {
			topology = pilotapi.DefaultTopology
		}
		if set["inputs"] {
			topology.InputCount = values.inputs
		}
		if set["outputs"] {
			topology.OutputCount = values.outputs
		}
		if set["hidden"] {
			topology.HiddenLayers = values.hidden
		}
		if set["width"] {
			topology.NeuronsPerHidden = values.width
		}
		req.Topology = topology
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
