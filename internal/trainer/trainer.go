package trainer

import (
	"pilotnet/internal/model"
	"pilotnet/internal/nn"
)

// TrainOne presents a single sample: one forward pass followed by one
// online backpropagation update at the network's current learning rate.
// No batching, momentum, or regularization. The returned prediction is
// the pre-update forward pass, so error accumulated from it is
// consistent with the update that was applied.
func TrainOne(net *nn.Network, sample model.TrainingSample) ([]float64, error) {
	return net.StepBackprop(sample.Inputs, sample.Targets)
}

// SampleLoss is the mean squared per-output difference for one sample,
// the same quantity the epoch scheduler aggregates.
func SampleLoss(predicted, targets []float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	sum := 0.0
	for i, p := range predicted {
		d := targets[i] - p
		sum += d * d
	}
	return sum / float64(len(predicted))
}
