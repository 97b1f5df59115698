package pipeline

import (
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlpipe/ensemble"
	"github.com/YuminosukeSato/mlpipe/preprocessing"
)

func clusterData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(10, 2, []float64{
		0.0, 100,
		0.1, 110,
		0.2, 105,
		0.1, 95,
		0.0, 102,
		5.0, 900,
		5.1, 910,
		5.2, 905,
		5.1, 895,
		5.0, 902,
	})
	y := mat.NewDense(10, 1, []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1})
	return X, y
}

func newTestPipeline() *Pipeline {
	return New(
		ensemble.NewRandomForestClassifier(
			ensemble.WithNEstimators(10),
			ensemble.WithRandomState(42),
		),
		Step{Name: "scale", Transformer: preprocessing.NewStandardScalerDefault()},
	)
}

func TestPipeline_FitPredict(t *testing.T) {
	X, y := clusterData()

	p := newTestPipeline()
	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	pred, err := p.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if pred.At(i, 0) != y.At(i, 0) {
			t.Errorf("sample %d: predicted %v, want %v", i, pred.At(i, 0), y.At(i, 0))
		}
	}

	score, err := p.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 1.0 {
		t.Errorf("Score = %v, want 1.0 on separable training data", score)
	}
}

func TestPipeline_NotFitted(t *testing.T) {
	p := newTestPipeline()

	if _, err := p.Predict(mat.NewDense(1, 2, []float64{0, 0})); err == nil {
		t.Error("expected error when predicting without fitting")
	}
	if _, err := p.Score(mat.NewDense(1, 2, nil), mat.NewDense(1, 1, nil)); err == nil {
		t.Error("expected error when scoring without fitting")
	}
}

func TestPipeline_NoClassifier(t *testing.T) {
	p := New(nil, Step{Name: "scale", Transformer: preprocessing.NewStandardScalerDefault()})
	if err := p.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 1, []float64{0, 1})); err == nil {
		t.Error("expected error for pipeline without classifier")
	}
}

// The monolithic artifact: one file, transforms and classifier together.
func TestPipeline_SaveLoad(t *testing.T) {
	X, y := clusterData()

	p := newTestPipeline()
	if err := p.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "pipeline.gob")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.IsFitted() {
		t.Fatal("loaded pipeline should be fitted")
	}
	if len(loaded.Steps) != 1 || loaded.Steps[0].Name != "scale" {
		t.Errorf("steps lost in round trip: %+v", loaded.Steps)
	}

	orig, _ := p.Predict(X)
	got, err := loaded.Predict(X)
	if err != nil {
		t.Fatalf("Predict on loaded pipeline failed: %v", err)
	}
	if !mat.Equal(orig, got) {
		t.Error("predictions changed after save/load")
	}
}
