package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Topology fixes the shape of a feedforward steering network. It is
// immutable after construction; every persisted weight set carries it so
// restores can be shape-checked.
type Topology struct {
	InputCount       int `json:"input_count"`
	OutputCount      int `json:"output_count"`
	HiddenLayers     int `json:"hidden_layers"`
	NeuronsPerHidden int `json:"neurons_per_hidden"`
}

// TrainingSample pairs one recorded sensor sweep with the normalized
// control values observed at the same instant.
type TrainingSample struct {
	Inputs  []float64 `json:"inputs"`
	Targets []float64 `json:"targets"`
}

// Checkpoint is one persisted weight set, keyed by run and epoch.
type Checkpoint struct {
	VersionedRecord
	RunID        string   `json:"run_id"`
	Epoch        int      `json:"epoch"`
	Topology     Topology `json:"topology"`
	SSE          float64  `json:"sse"`
	Alpha        float64  `json:"alpha"`
	Weights      string   `json:"weights"`
	CreatedAtUTC string   `json:"created_at_utc"`
}

// TrainingRun summarizes a completed training invocation.
type TrainingRun struct {
	VersionedRecord
	ID           string   `json:"id"`
	Topology     Topology `json:"topology"`
	Samples      int      `json:"samples"`
	Epochs       int      `json:"epochs"`
	Seed         int64    `json:"seed"`
	FinalSSE     float64  `json:"final_sse"`
	FinalAlpha   float64  `json:"final_alpha"`
	CreatedAtUTC string   `json:"created_at_utc"`
}

// EpochStats is one entry of a run's per-epoch trail.
type EpochStats struct {
	Epoch    int     `json:"epoch"`
	SSE      float64 `json:"sse"`
	Alpha    float64 `json:"alpha"`
	Accepted bool    `json:"accepted"`
}
