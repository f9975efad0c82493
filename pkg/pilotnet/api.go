package pilotnet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"pilotnet/internal/dataset"
	"pilotnet/internal/model"
	"pilotnet/internal/nn"
	"pilotnet/internal/storage"
	"pilotnet/internal/trainer"
)

const defaultDBPath = "pilotnet.db"

// Defaults match the recorded-drive format: five ray sensors in, one
// steering plus one throttle command out.
var DefaultTopology = model.Topology{
	InputCount:       5,
	OutputCount:      2,
	HiddenLayers:     1,
	NeuronsPerHidden: 10,
}

const DefaultAlpha = 0.5

type Options struct {
	StoreKind string
	DBPath    string
}

// Client is the embedding surface for hosts: train against a recording,
// persist the result, and later rebuild a network for live inference.
type Client struct {
	store storage.Store
}

func New(ctx context.Context, opts Options) (*Client, error) {
	kind := opts.StoreKind
	if kind == "" {
		kind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(kind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

// NewWithStore wraps an already-initialized store, used by the ctl and
// by tests.
func NewWithStore(store storage.Store) *Client {
	return &Client{store: store}
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

type TrainRequest struct {
	RunID       string
	DatasetPath string
	Topology    model.Topology
	Alpha       float64
	Epochs      int
	Seed        int64
	// Resume restores the run's latest checkpoint before training. An
	// absent or unreadable checkpoint falls back to fresh weights.
	Resume   bool
	Progress func(trainer.EpochReport)
}

type TrainSummary struct {
	RunID      string
	Samples    int
	Filtered   int
	Epochs     int
	Resumed    bool
	FinalSSE   float64
	FinalAlpha float64
	Weights    string
}

func (c *Client) Train(ctx context.Context, req TrainRequest) (TrainSummary, error) {
	if req.DatasetPath == "" {
		return TrainSummary{}, errors.New("dataset path is required")
	}
	topology := req.Topology
	if topology == (model.Topology{}) {
		topology = DefaultTopology
	}
	alpha := req.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	epochs := req.Epochs
	if epochs < 1 {
		return TrainSummary{}, errors.New("epoch budget must be >= 1")
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	samples, stats, err := dataset.LoadFile(req.DatasetPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return TrainSummary{}, fmt.Errorf("no recording at %s: %w", req.DatasetPath, err)
		}
		return TrainSummary{}, err
	}

	net, err := nn.New(topology, alpha, seed)
	if err != nil {
		return TrainSummary{}, err
	}

	resumed := false
	if req.Resume {
		resumed, err = c.restoreLatest(ctx, net, runID)
		if err != nil {
			return TrainSummary{}, err
		}
	}

	scheduler, err := trainer.NewScheduler(net, samples, epochs)
	if err != nil {
		return TrainSummary{}, err
	}

	var reports []trainer.EpochReport
	last, err := scheduler.Run(ctx, func(report trainer.EpochReport) {
		reports = append(reports, report)
		if req.Progress != nil {
			req.Progress(report)
		}
	})
	if err != nil {
		return TrainSummary{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	checkpoint := model.Checkpoint{
		VersionedRecord: storage.Versioned(),
		RunID:           runID,
		Epoch:           last.Epoch,
		Topology:        topology,
		SSE:             last.LastAcceptedSSE,
		Alpha:           last.Alpha,
		Weights:         net.Marshal(),
		CreatedAtUTC:    now,
	}
	if err := c.store.SaveCheckpoint(ctx, checkpoint); err != nil {
		return TrainSummary{}, fmt.Errorf("save checkpoint: %w", err)
	}
	run := model.TrainingRun{
		VersionedRecord: storage.Versioned(),
		ID:              runID,
		Topology:        topology,
		Samples:         stats.Eligible,
		Epochs:          last.Epoch,
		Seed:            seed,
		FinalSSE:        last.LastAcceptedSSE,
		FinalAlpha:      last.Alpha,
		CreatedAtUTC:    now,
	}
	if err := c.store.SaveTrainingRun(ctx, run); err != nil {
		return TrainSummary{}, fmt.Errorf("save training run: %w", err)
	}
	if err := c.store.SaveEpochHistory(ctx, runID, trainer.History(reports)); err != nil {
		return TrainSummary{}, fmt.Errorf("save epoch history: %w", err)
	}

	return TrainSummary{
		RunID:      runID,
		Samples:    stats.Eligible,
		Filtered:   stats.Filtered,
		Epochs:     last.Epoch,
		Resumed:    resumed,
		FinalSSE:   last.LastAcceptedSSE,
		FinalAlpha: last.Alpha,
		Weights:    net.Marshal(),
	}, nil
}

// restoreLatest loads the run's newest checkpoint into net. A missing
// checkpoint, or one that fails to parse, means fresh weights; only a
// checkpoint with a conflicting topology is an error worth stopping for.
func (c *Client) restoreLatest(ctx context.Context, net *nn.Network, runID string) (bool, error) {
	checkpoint, ok, err := c.store.LatestCheckpoint(ctx, runID)
	if err != nil {
		return false, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return false, nil
	}
	store, err := net.Unmarshal(checkpoint.Weights)
	if err != nil {
		if errors.Is(err, nn.ErrTopologyMismatch) {
			return false, err
		}
		return false, nil
	}
	if err := net.Restore(store); err != nil {
		return false, err
	}
	return true, nil
}

type InferRequest struct {
	RunID   string
	Sensors []float64
}

// Infer rebuilds the run's latest checkpointed network and returns the
// [-1, 1] steering and throttle command for one sensor sweep.
func (c *Client) Infer(ctx context.Context, req InferRequest) ([]float64, error) {
	if req.RunID == "" {
		return nil, errors.New("run id is required")
	}
	checkpoint, ok, err := c.store.LatestCheckpoint(ctx, req.RunID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("no checkpoint for run %s", req.RunID)
	}

	net, err := nn.New(checkpoint.Topology, checkpoint.Alpha, 0)
	if err != nil {
		return nil, err
	}
	store, err := net.Unmarshal(checkpoint.Weights)
	if err != nil {
		return nil, fmt.Errorf("checkpoint for run %s: %w", req.RunID, err)
	}
	if err := net.Restore(store); err != nil {
		return nil, err
	}

	outputs, err := net.Forward(req.Sensors)
	if err != nil {
		return nil, err
	}
	command := make([]float64, len(outputs))
	for i, v := range outputs {
		command[i] = dataset.DenormalizeControl(v)
	}
	return command, nil
}

// Runs lists stored training runs, newest first.
func (c *Client) Runs(ctx context.Context) ([]model.TrainingRun, error) {
	return c.store.ListTrainingRuns(ctx)
}

// History returns the per-epoch trail of one run.
func (c *Client) History(ctx context.Context, runID string) ([]model.EpochStats, bool, error) {
	return c.store.GetEpochHistory(ctx, runID)
}
