package io

import (
	"context"
	"testing"
)

func TestProximitySensorDefaults(t *testing.T) {
	s := NewProximitySensor("")
	if s.Name() != ProximitySensorName {
		t.Fatalf("unexpected name: got=%q want=%q", s.Name(), ProximitySensorName)
	}

	values, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(values) != 1 || values[0] != 1 {
		t.Fatalf("fresh sensor should read clear: got=%v", values)
	}
}

func TestProximitySensorSetClamps(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{name: "in-range", value: 0.4, want: 0.4},
		{name: "below", value: -2, want: 0},
		{name: "above", value: 1.5, want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewProximitySensor("ray-left")
			s.Set(tc.value)
			values, err := s.Read(context.Background())
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if values[0] != tc.want {
				t.Fatalf("unexpected reading: got=%v want=%v", values[0], tc.want)
			}
		})
	}
}

func TestSteeringActuatorRecordsLastCommand(t *testing.T) {
	a := NewSteeringActuator()
	if a.Name() != SteeringActuatorName {
		t.Fatalf("unexpected name: got=%q want=%q", a.Name(), SteeringActuatorName)
	}
	if got := a.Last(); len(got) != 0 {
		t.Fatalf("fresh actuator has a command: %v", got)
	}

	command := []float64{-0.25, 0.9}
	if err := a.Write(context.Background(), command); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := a.Last()
	if len(got) != 2 || got[0] != -0.25 || got[1] != 0.9 {
		t.Fatalf("unexpected last command: got=%v want=%v", got, command)
	}

	// Last returns a copy the caller may scribble on.
	got[0] = 99
	if again := a.Last(); again[0] != -0.25 {
		t.Fatalf("Last aliased internal state: %v", again)
	}
}

func TestComponentsSatisfyOptionalCapabilities(t *testing.T) {
	var sensor Sensor = NewProximitySensor("")
	if _, ok := sensor.(ScalarSensorSetter); !ok {
		t.Fatal("proximity sensor does not accept pushed readings")
	}

	var actuator Actuator = NewSteeringActuator()
	if _, ok := actuator.(SnapshotActuator); !ok {
		t.Fatal("steering actuator does not expose its last command")
	}
}
