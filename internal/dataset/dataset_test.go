package dataset

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testRecording = `1,1,1,1,1,0.5,1
0.2,0.4,1,0.4,0.2,0,0
0.1,0.9,0.8,0.7,0.3,-1,0.25
1,1,0.5,1,1,0,0
`

func TestLoadFiltersNoManeuverLines(t *testing.T) {
	samples, stats, err := Load(strings.NewReader(testRecording))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if stats.Lines != 4 {
		t.Fatalf("lines: got=%d want=4", stats.Lines)
	}
	if stats.Filtered != 2 {
		t.Fatalf("filtered: got=%d want=2", stats.Filtered)
	}
	if stats.Eligible != 2 {
		t.Fatalf("eligible: got=%d want=2", stats.Eligible)
	}
	if len(samples) != 2 {
		t.Fatalf("samples: got=%d want=2", len(samples))
	}
}

func TestLoadNormalizesTargets(t *testing.T) {
	samples, _, err := Load(strings.NewReader(testRecording))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Line 1: steering 0.5 -> 0.75, throttle 1 -> 1.
	first := samples[0]
	wantInputs := []float64{1, 1, 1, 1, 1}
	for i, v := range wantInputs {
		if first.Inputs[i] != v {
			t.Fatalf("sample 0 input %d: got=%v want=%v", i, first.Inputs[i], v)
		}
	}
	if math.Abs(first.Targets[0]-0.75) > 1e-12 {
		t.Fatalf("sample 0 steering target: got=%v want=0.75", first.Targets[0])
	}
	if math.Abs(first.Targets[1]-1) > 1e-12 {
		t.Fatalf("sample 0 throttle target: got=%v want=1", first.Targets[1])
	}

	// Line 3: steering -1 -> 0, throttle 0.25 -> 0.625.
	second := samples[1]
	if math.Abs(second.Targets[0]-0) > 1e-12 {
		t.Fatalf("sample 1 steering target: got=%v want=0", second.Targets[0])
	}
	if math.Abs(second.Targets[1]-0.625) > 1e-12 {
		t.Fatalf("sample 1 throttle target: got=%v want=0.625", second.Targets[1])
	}
}

func TestLoadRejectsMalformedLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "too-few-fields", input: "1,1,1,1,1,0.5\n"},
		{name: "too-many-fields", input: "1,1,1,1,1,0.5,1,9\n"},
		{name: "non-numeric", input: "1,1,one,1,1,0.5,1\n"},
		{name: "second-line-bad", input: "1,1,1,1,1,0.5,1\n1,1,1,1,x,0.5,1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := Load(strings.NewReader(tc.input)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestLoadEmptyRecording(t *testing.T) {
	samples, stats, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(samples) != 0 || stats.Lines != 0 {
		t.Fatalf("unexpected result for empty input: samples=%d lines=%d", len(samples), stats.Lines)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.csv")
	if err := os.WriteFile(path, []byte(testRecording), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}

	samples, stats, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if len(samples) != 2 || stats.Eligible != 2 {
		t.Fatalf("unexpected load: samples=%d eligible=%d", len(samples), stats.Eligible)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}
