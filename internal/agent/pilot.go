package agent

import (
	"context"
	"fmt"

	"pilotnet/internal/dataset"
	pilotio "pilotnet/internal/io"
	"pilotnet/internal/nn"
)

// Pilot attaches a trained network to a game object: each tick it reads
// every proximity sensor, evaluates the network, and writes the
// steering/throttle command remapped to [-1, 1]. The network must be
// done training before ticks start; the pilot never mutates weights.
type Pilot struct {
	net      *nn.Network
	sensors  []pilotio.Sensor
	actuator pilotio.Actuator
}

func NewPilot(net *nn.Network, sensors []pilotio.Sensor, actuator pilotio.Actuator) (*Pilot, error) {
	if net == nil {
		return nil, fmt.Errorf("network is required")
	}
	if len(sensors) == 0 {
		return nil, fmt.Errorf("at least one sensor is required")
	}
	return &Pilot{
		net:      net,
		sensors:  append([]pilotio.Sensor(nil), sensors...),
		actuator: actuator,
	}, nil
}

// Tick performs one sense-evaluate-act step and returns the command it
// wrote, steering first, throttle second.
func (p *Pilot) Tick(ctx context.Context) ([]float64, error) {
	inputs := make([]float64, 0, len(p.sensors))
	for _, sensor := range p.sensors {
		values, err := sensor.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("sensor %s: %w", sensor.Name(), err)
		}
		inputs = append(inputs, values...)
	}

	outputs, err := p.net.Forward(inputs)
	if err != nil {
		return nil, err
	}

	command := make([]float64, len(outputs))
	for i, v := range outputs {
		command[i] = dataset.DenormalizeControl(v)
	}
	if p.actuator != nil {
		if err := p.actuator.Write(ctx, command); err != nil {
			return nil, fmt.Errorf("actuator %s: %w", p.actuator.Name(), err)
		}
	}
	return command, nil
}
