package io

import (
	"context"
	"sync"
)

const (
	ProximitySensorName  = "proximity"
	SteeringActuatorName = "steering"
)

// ProximitySensor holds one pre-normalized inverse-proximity reading in
// [0, 1]: 1 means the ray hit nothing, 0 means contact. The host writes
// it each frame; the pilot reads it on its own tick.
type ProximitySensor struct {
	name string

	mu    sync.RWMutex
	value float64
}

func NewProximitySensor(name string) *ProximitySensor {
	if name == "" {
		name = ProximitySensorName
	}
	return &ProximitySensor{name: name, value: 1}
}

func (s *ProximitySensor) Name() string {
	return s.name
}

func (s *ProximitySensor) Read(_ context.Context) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []float64{s.value}, nil
}

func (s *ProximitySensor) Set(value float64) {
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
}

// SteeringActuator records the last steering/throttle command so the
// host can apply it on its next physics step.
type SteeringActuator struct {
	mu   sync.RWMutex
	last []float64
}

func NewSteeringActuator() *SteeringActuator {
	return &SteeringActuator{}
}

func (a *SteeringActuator) Name() string {
	return SteeringActuatorName
}

func (a *SteeringActuator) Write(_ context.Context, values []float64) error {
	a.mu.Lock()
	a.last = append([]float64(nil), values...)
	a.mu.Unlock()
	return nil
}

func (a *SteeringActuator) Last() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.last...)
}
