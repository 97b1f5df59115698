package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "Perfect accuracy",
			yTrue: []float64{0, 1, 2, 1, 0},
			yPred: []float64{0, 1, 2, 1, 0},
			want:  1.0,
		},
		{
			name:  "80% accuracy",
			yTrue: []float64{0, 1, 2, 1, 0},
			yPred: []float64{0, 1, 1, 1, 0},
			want:  0.8,
		},
		{
			name:  "Zero accuracy",
			yTrue: []float64{0, 0, 0},
			yPred: []float64{1, 1, 1},
			want:  0.0,
		},
		{
			name:    "Empty vectors",
			yTrue:   []float64{},
			yPred:   []float64{},
			wantErr: true,
		},
		{
			name:    "Length mismatch",
			yTrue:   []float64{0, 1},
			yPred:   []float64{0, 1, 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var yTrue, yPred *mat.VecDense
			if len(tt.yTrue) > 0 {
				yTrue = mat.NewVecDense(len(tt.yTrue), tt.yTrue)
			}
			if len(tt.yPred) > 0 {
				yPred = mat.NewVecDense(len(tt.yPred), tt.yPred)
			}

			got, err := Accuracy(yTrue, yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
			if !tt.wantErr && (got < 0 || got > 1) {
				t.Errorf("Accuracy() = %v, out of [0, 1]", got)
			}
		})
	}
}

func TestAccuracyMatrix(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{0, 1, 1, 0})
	yPred := mat.NewDense(4, 1, []float64{0, 1, 0, 0})

	got, err := AccuracyMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("AccuracyMatrix() error = %v", err)
	}
	if math.Abs(got-0.75) > 1e-6 {
		t.Errorf("AccuracyMatrix() = %v, want 0.75", got)
	}

	if _, err := AccuracyMatrix(mat.NewDense(2, 2, nil), yPred); err == nil {
		t.Error("expected error for non-column matrix")
	}
}

func TestClassificationError(t *testing.T) {
	yTrue := mat.NewVecDense(5, []float64{0, 1, 2, 1, 0})
	yPred := mat.NewVecDense(5, []float64{0, 1, 1, 1, 0})

	got, err := ClassificationError(yTrue, yPred)
	if err != nil {
		t.Fatalf("ClassificationError() error = %v", err)
	}
	if math.Abs(got-0.2) > 1e-6 {
		t.Errorf("ClassificationError() = %v, want 0.2", got)
	}
}

func TestClassCounts(t *testing.T) {
	yPred := mat.NewDense(6, 1, []float64{0, 1, 1, 2, 2, 2})

	counts, err := ClassCounts(yPred, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("ClassCounts() error = %v", err)
	}
	want := []int{1, 2, 3}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("ClassCounts()[%d] = %d, want %d", i, counts[i], want[i])
		}
	}

	if _, err := ClassCounts(yPred, []int{0, 1}); err == nil {
		t.Error("expected error for label outside classes")
	}
}
