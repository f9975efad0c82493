package storage

import (
	"errors"
	"testing"

	"pilotnet/internal/model"
)

func TestCheckpointCodecRoundTrip(t *testing.T) {
	want := testCheckpoint("run-a", 7)
	data, err := EncodeCheckpoint(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeCheckpoint(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("round trip: got=%+v want=%+v", got, want)
	}
}

func TestTrainingRunCodecRoundTrip(t *testing.T) {
	want := model.TrainingRun{
		VersionedRecord: Versioned(),
		ID:              "run-a",
		Topology:        testTopology(),
		Samples:         120,
		Epochs:          50,
		Seed:            42,
		FinalSSE:        0.03,
		FinalAlpha:      0.52,
		CreatedAtUTC:    "2026-08-24T10:00:00Z",
	}
	data, err := EncodeTrainingRun(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeTrainingRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("round trip: got=%+v want=%+v", got, want)
	}
}

func TestDecodeRejectsForeignVersions(t *testing.T) {
	checkpoint := testCheckpoint("run-a", 1)
	checkpoint.SchemaVersion = CurrentSchemaVersion + 1
	data, err := EncodeCheckpoint(checkpoint)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeCheckpoint(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}

	run := model.TrainingRun{VersionedRecord: Versioned(), ID: "run-a"}
	run.CodecVersion = CurrentCodecVersion + 1
	data, err = EncodeTrainingRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeTrainingRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeCheckpoint([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeTrainingRun([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeEpochHistory([]byte("42")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEpochHistoryCodecRoundTrip(t *testing.T) {
	want := []model.EpochStats{
		{Epoch: 1, SSE: 0.4, Alpha: 0.501, Accepted: true},
		{Epoch: 2, SSE: 0.5, Alpha: 0.5, Accepted: false},
	}
	data, err := EncodeEpochHistory(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeEpochHistory(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected length: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got=%+v want=%+v", i, got[i], want[i])
		}
	}
}
