package agent

import (
	"context"
	"errors"
	"testing"

	pilotio "pilotnet/internal/io"
	"pilotnet/internal/model"
	"pilotnet/internal/nn"
)

func newTickNetwork(t *testing.T, inputs int) *nn.Network {
	t.Helper()
	net, err := nn.New(model.Topology{
		InputCount:       inputs,
		OutputCount:      2,
		HiddenLayers:     1,
		NeuronsPerHidden: 10,
	}, 0.5, 7)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	return net
}

func raySensors(n int) []pilotio.Sensor {
	sensors := make([]pilotio.Sensor, n)
	for i := range sensors {
		sensors[i] = pilotio.NewProximitySensor("")
	}
	return sensors
}

func TestNewPilotValidation(t *testing.T) {
	net := newTickNetwork(t, 5)
	if _, err := NewPilot(nil, raySensors(5), nil); err == nil {
		t.Fatal("expected error for nil network")
	}
	if _, err := NewPilot(net, nil, nil); err == nil {
		t.Fatal("expected error for missing sensors")
	}
}

func TestTickWritesRemappedCommand(t *testing.T) {
	net := newTickNetwork(t, 5)
	sensors := raySensors(5)
	actuator := pilotio.NewSteeringActuator()

	pilot, err := NewPilot(net, sensors, actuator)
	if err != nil {
		t.Fatalf("new pilot: %v", err)
	}

	command, err := pilot.Tick(context.Background())
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(command) != 2 {
		t.Fatalf("unexpected command width: got=%d want=2", len(command))
	}
	for i, v := range command {
		if v < -1 || v > 1 {
			t.Fatalf("command %d outside [-1,1]: %v", i, v)
		}
	}

	last := actuator.Last()
	if len(last) != 2 || last[0] != command[0] || last[1] != command[1] {
		t.Fatalf("actuator did not receive the command: got=%v want=%v", last, command)
	}
}

func TestTickRespondsToSensorChanges(t *testing.T) {
	net := newTickNetwork(t, 5)
	sensors := raySensors(5)
	pilot, err := NewPilot(net, sensors, nil)
	if err != nil {
		t.Fatalf("new pilot: %v", err)
	}

	clear, err := pilot.Tick(context.Background())
	if err != nil {
		t.Fatalf("tick: %v", err)
	}

	for _, s := range sensors {
		s.(pilotio.ScalarSensorSetter).Set(0)
	}
	blocked, err := pilot.Tick(context.Background())
	if err != nil {
		t.Fatalf("tick: %v", err)
	}

	same := true
	for i := range clear {
		if clear[i] != blocked[i] {
			same = false
		}
	}
	if same {
		t.Fatal("command unchanged when every ray went from clear to contact")
	}
}

func TestTickSensorCountMustMatchTopology(t *testing.T) {
	net := newTickNetwork(t, 5)
	pilot, err := NewPilot(net, raySensors(3), nil)
	if err != nil {
		t.Fatalf("new pilot: %v", err)
	}

	if _, err := pilot.Tick(context.Background()); !errors.Is(err, nn.ErrDimension) {
		t.Fatalf("expected ErrDimension, got %v", err)
	}
}

type failingSensor struct{}

func (failingSensor) Name() string { return "broken" }

func (failingSensor) Read(context.Context) ([]float64, error) {
	return nil, errors.New("ray cast unavailable")
}

func TestTickSurfacesSensorErrors(t *testing.T) {
	net := newTickNetwork(t, 5)
	sensors := append(raySensors(4), failingSensor{})
	pilot, err := NewPilot(net, sensors, nil)
	if err != nil {
		t.Fatalf("new pilot: %v", err)
	}

	if _, err := pilot.Tick(context.Background()); err == nil {
		t.Fatal("expected sensor error")
	}
}
