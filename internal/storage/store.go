package storage

import (
	"context"

	"pilotnet/internal/model"
)

// Store persists training runs, their per-epoch trails, and weight
// checkpoints. Absence is never fatal: a missing checkpoint means the
// caller trains from fresh initialization.
type Store interface {
	Init(ctx context.Context) error
	SaveCheckpoint(ctx context.Context, checkpoint model.Checkpoint) error
	LatestCheckpoint(ctx context.Context, runID string) (model.Checkpoint, bool, error)
	SaveTrainingRun(ctx context.Context, run model.TrainingRun) error
	GetTrainingRun(ctx context.Context, id string) (model.TrainingRun, bool, error)
	ListTrainingRuns(ctx context.Context) ([]model.TrainingRun, error)
	SaveEpochHistory(ctx context.Context, runID string, history []model.EpochStats) error
	GetEpochHistory(ctx context.Context, runID string) ([]model.EpochStats, bool, error)
}
