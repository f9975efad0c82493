package nn

import (
	"errors"
	"strings"
	"testing"

	"pilotnet/internal/model"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	net, err := New(testTopology, 0.5, 17)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// Train a little so the weights are not fresh-init values.
	for i := 0; i < 20; i++ {
		if _, err := net.StepBackprop([]float64{0.1, 0.2, 0.3, 0.4, 0.5}, []float64{0.6, 0.4}); err != nil {
			t.Fatalf("step: %v", err)
		}
	}

	line := net.Marshal()
	if strings.ContainsAny(line, "\n\r") {
		t.Fatal("encoding spans more than one line")
	}

	other, err := New(testTopology, 0.5, 99)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	store, err := other.Unmarshal(line)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := other.Restore(store); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if got := other.Marshal(); got != line {
		t.Fatal("round trip is not bit exact")
	}

	inputs := []float64{0.9, 0.1, 0.5, 0.3, 0.7}
	wantOut, err := net.Forward(inputs)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	gotOut, err := other.Forward(inputs)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	for i := range wantOut {
		if gotOut[i] != wantOut[i] {
			t.Fatalf("restored network computes differently at %d: got=%v want=%v", i, gotOut[i], wantOut[i])
		}
	}
}

func TestUnmarshalRejectsBadLines(t *testing.T) {
	net, err := New(testTopology, 0.5, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	valid := net.Marshal()
	fields := strings.Fields(valid)

	tests := []struct {
		name string
		line string
		want error
	}{
		{name: "empty", line: "", want: ErrMalformed},
		{name: "version-only", line: "wv1", want: ErrMalformed},
		{name: "future-version", line: "wv2 " + strings.Join(fields[1:], " "), want: ErrCodecVersion},
		{name: "garbage-version", line: "hello " + strings.Join(fields[1:], " "), want: ErrCodecVersion},
		{name: "bad-topology", line: "wv1 5:2:1 " + strings.Join(fields[2:], " "), want: ErrMalformed},
		{name: "zero-topology-field", line: "wv1 5:0:1:10 " + strings.Join(fields[2:], " "), want: ErrMalformed},
		{name: "missing-parameter", line: strings.Join(fields[:len(fields)-1], " "), want: ErrMalformed},
		{name: "extra-parameter", line: valid + " 0.5", want: ErrMalformed},
		{name: "non-numeric-parameter", line: strings.Join(append(append([]string(nil), fields[:len(fields)-1]...), "abc"), " "), want: ErrMalformed},
		{name: "foreign-topology", line: "wv1 3:2:1:10 " + strings.Join(fields[2:], " "), want: ErrTopologyMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := net.Unmarshal(tc.line); !errors.Is(err, tc.want) {
				t.Fatalf("unexpected error: got=%v want=%v", err, tc.want)
			}
		})
	}
}

func TestCodecVersionDistinguishableFromCorruption(t *testing.T) {
	net, err := New(testTopology, 0.5, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	line := "wv9 " + strings.Join(strings.Fields(net.Marshal())[1:], " ")

	_, err = net.Unmarshal(line)
	if !errors.Is(err, ErrCodecVersion) {
		t.Fatalf("expected ErrCodecVersion, got %v", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Fatal("version mismatch must not also report corruption")
	}
}

func TestTopologyFormatRoundTrip(t *testing.T) {
	want := model.Topology{InputCount: 5, OutputCount: 2, HiddenLayers: 3, NeuronsPerHidden: 7}
	got, err := parseTopology(formatTopology(want))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != want {
		t.Fatalf("topology round trip: got=%+v want=%+v", got, want)
	}
}
