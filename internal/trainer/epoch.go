package trainer

import (
	"context"
	"errors"

	"pilotnet/internal/model"
	"pilotnet/internal/nn"
)

// alphaStep is the symmetric learning-rate adjustment applied after
// every epoch: grown on acceptance, shrunk on rollback.
const alphaStep = 0.001

var (
	// ErrEmptyDataset reports a dataset with no eligible samples. The
	// scheduler refuses to start rather than divide by zero later.
	ErrEmptyDataset = errors.New("no eligible training samples")
	// ErrBudgetExhausted reports a RunEpoch call past the epoch budget.
	ErrBudgetExhausted = errors.New("epoch budget exhausted")
)

// Scheduler drives full-dataset sweeps with rollback: each epoch's
// weight mutations are kept only if they improved the normalized error,
// otherwise the pre-epoch snapshot is restored and the learning rate
// shrinks. Full rollback plus a small symmetric rate step is a crude
// trust region: slower than a line search, but it cannot diverge on a
// badly chosen initial rate.
type Scheduler struct {
	net             *nn.Network
	samples         []model.TrainingSample
	maxEpochs       int
	epoch           int
	lastAcceptedSSE float64
}

// EpochReport is the read-only view the surrounding display logic may
// poll after each epoch.
type EpochReport struct {
	Epoch           int
	SSE             float64
	LastAcceptedSSE float64
	Alpha           float64
	Accepted        bool
	Progress        float64
}

// NewScheduler takes exclusive ownership of net for the duration of
// training. Samples are swept in the given order every epoch, so a
// fixed slice gives reproducible runs.
func NewScheduler(net *nn.Network, samples []model.TrainingSample, maxEpochs int) (*Scheduler, error) {
	if net == nil {
		return nil, errors.New("network is required")
	}
	if len(samples) == 0 {
		return nil, ErrEmptyDataset
	}
	if maxEpochs < 1 {
		return nil, errors.New("epoch budget must be >= 1")
	}
	return &Scheduler{
		net:             net,
		samples:         append([]model.TrainingSample(nil), samples...),
		maxEpochs:       maxEpochs,
		lastAcceptedSSE: 1.0,
	}, nil
}

// RunEpoch sweeps every sample once and then commits or rolls back the
// sweep's weight changes. Cancellation is honored only between epochs;
// a started sweep always finishes or restores, never stops mid-update.
func (s *Scheduler) RunEpoch(ctx context.Context) (EpochReport, error) {
	if err := ctx.Err(); err != nil {
		return EpochReport{}, err
	}
	if s.Done() {
		return EpochReport{}, ErrBudgetExhausted
	}

	snapshot := s.net.Snapshot()
	total := 0.0
	for _, sample := range s.samples {
		predicted, err := TrainOne(s.net, sample)
		if err != nil {
			// A bad sample must not leave a half-trained epoch behind.
			_ = s.net.Restore(snapshot)
			return EpochReport{}, err
		}
		total += SampleLoss(predicted, sample.Targets)
	}
	sse := total / float64(len(s.samples))
	s.epoch++

	report := EpochReport{
		Epoch:    s.epoch,
		SSE:      sse,
		Progress: float64(s.epoch) / float64(s.maxEpochs),
	}
	if sse >= s.lastAcceptedSSE {
		if err := s.net.Restore(snapshot); err != nil {
			return EpochReport{}, err
		}
		s.net.BumpAlpha(-alphaStep)
	} else {
		s.net.BumpAlpha(alphaStep)
		s.lastAcceptedSSE = sse
		report.Accepted = true
	}
	report.LastAcceptedSSE = s.lastAcceptedSSE
	report.Alpha = s.net.Alpha()
	return report, nil
}

// Run drives RunEpoch until the budget is spent or ctx is canceled,
// invoking progress after each epoch when set. The last report is
// returned alongside any error that stopped the run early.
func (s *Scheduler) Run(ctx context.Context, progress func(EpochReport)) (EpochReport, error) {
	var last EpochReport
	for !s.Done() {
		report, err := s.RunEpoch(ctx)
		if err != nil {
			return last, err
		}
		last = report
		if progress != nil {
			progress(report)
		}
	}
	return last, nil
}

// Done reports whether the epoch budget is spent.
func (s *Scheduler) Done() bool {
	return s.epoch >= s.maxEpochs
}

// LastAcceptedSSE is the error of the most recently committed epoch;
// 1.0 until a first epoch is accepted.
func (s *Scheduler) LastAcceptedSSE() float64 {
	return s.lastAcceptedSSE
}

// Alpha mirrors the network's current learning rate.
func (s *Scheduler) Alpha() float64 {
	return s.net.Alpha()
}

// Progress is the fraction of the epoch budget consumed.
func (s *Scheduler) Progress() float64 {
	return float64(s.epoch) / float64(s.maxEpochs)
}

// History converts a sequence of reports into the persistable trail.
func History(reports []EpochReport) []model.EpochStats {
	out := make([]model.EpochStats, len(reports))
	for i, r := range reports {
		out[i] = model.EpochStats{Epoch: r.Epoch, SSE: r.SSE, Alpha: r.Alpha, Accepted: r.Accepted}
	}
	return out
}
