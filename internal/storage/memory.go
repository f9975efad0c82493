package storage

import (
	"context"
	"sort"
	"sync"

	"pilotnet/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	checkpoints map[string][]model.Checkpoint
	runs        map[string]model.TrainingRun
	history     map[string][]model.EpochStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.checkpoints = make(map[string][]model.Checkpoint)
	s.runs = make(map[string]model.TrainingRun)
	s.history = make(map[string][]model.EpochStats)
	return nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, checkpoint model.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[checkpoint.RunID] = append(s.checkpoints[checkpoint.RunID], checkpoint)
	return nil
}

func (s *MemoryStore) LatestCheckpoint(_ context.Context, runID string) (model.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoints := s.checkpoints[runID]
	if len(checkpoints) == 0 {
		return model.Checkpoint{}, false, nil
	}
	latest := checkpoints[0]
	for _, checkpoint := range checkpoints[1:] {
		if checkpoint.Epoch >= latest.Epoch {
			latest = checkpoint
		}
	}
	return latest, true, nil
}

func (s *MemoryStore) SaveTrainingRun(_ context.Context, run model.TrainingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetTrainingRun(_ context.Context, id string) (model.TrainingRun, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListTrainingRuns(_ context.Context) ([]model.TrainingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.TrainingRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

func (s *MemoryStore) SaveEpochHistory(_ context.Context, runID string, history []model.EpochStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.EpochStats, len(history))
	copy(copied, history)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetEpochHistory(_ context.Context, runID string) ([]model.EpochStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.EpochStats, len(history))
	copy(copied, history)
	return copied, true, nil
}
