package model

import (
	"bytes"
	"path/filepath"
	"testing"
)

type dummyEstimator struct {
	BaseEstimator
	Weights []float64
}

func TestSaveLoadModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gob")

	est := &dummyEstimator{Weights: []float64{1.5, -2.25, 3}}
	est.SetFitted()

	if err := SaveModel(est, path); err != nil {
		t.Fatalf("SaveModel failed: %v", err)
	}

	loaded := &dummyEstimator{}
	if err := LoadModel(loaded, path); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}

	if !loaded.IsFitted() {
		t.Error("fitted state should survive the round trip")
	}
	if len(loaded.Weights) != 3 || loaded.Weights[1] != -2.25 {
		t.Errorf("Weights = %v, want [1.5 -2.25 3]", loaded.Weights)
	}
}

func TestLoadModel_MissingFile(t *testing.T) {
	loaded := &dummyEstimator{}
	if err := LoadModel(loaded, filepath.Join(t.TempDir(), "nope.gob")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveLoadWriterReader(t *testing.T) {
	est := &dummyEstimator{Weights: []float64{7}}
	est.SetFitted()

	var buf bytes.Buffer
	if err := SaveModelToWriter(est, &buf); err != nil {
		t.Fatalf("SaveModelToWriter failed: %v", err)
	}

	loaded := &dummyEstimator{}
	if err := LoadModelFromReader(loaded, &buf); err != nil {
		t.Fatalf("LoadModelFromReader failed: %v", err)
	}
	if loaded.Weights[0] != 7 || !loaded.IsFitted() {
		t.Errorf("round trip lost state: %+v", loaded)
	}
}

func TestBaseEstimatorState(t *testing.T) {
	var e BaseEstimator
	if e.IsFitted() {
		t.Error("new estimator should not be fitted")
	}
	e.SetFitted()
	if !e.IsFitted() {
		t.Error("SetFitted should mark the estimator fitted")
	}
	e.Reset()
	if e.IsFitted() {
		t.Error("Reset should clear the fitted state")
	}
}
