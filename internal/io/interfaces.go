package io

import "context"

type Sensor interface {
	Name() string
	Read(ctx context.Context) ([]float64, error)
}

// ScalarSensorSetter is an optional sensor capability used by hosts
// that push ray-cast results into the pilot each frame.
type ScalarSensorSetter interface {
	Set(value float64)
}

type Actuator interface {
	Name() string
	Write(ctx context.Context, values []float64) error
}

// SnapshotActuator is an optional actuator capability used by hosts
// that poll the most recent steering command.
type SnapshotActuator interface {
	Last() []float64
}
