// Package inference reconstructs the composite inference unit from a model
// directory and applies it to batches of input rows. It is the hand-off
// surface for the external serving collaborator.
package inference

import (
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlpipe/core/model"
	"github.com/YuminosukeSato/mlpipe/ensemble"
	"github.com/YuminosukeSato/mlpipe/pkg/errors"
	"github.com/YuminosukeSato/mlpipe/preprocessing"
)

const (
	// ModelFile is the serialized classifier inside a model directory.
	ModelFile = "model.gob"

	// PreprocFile is the transform artifact copied through by the training
	// stage. It is byte-identical to the one the preprocessing stage wrote;
	// nothing refits it.
	PreprocFile = "preproc.gob"
)

// Bundle is the composite inference unit: the fitted transform and the
// fitted classifier, always applied in sequence.
type Bundle struct {
	Transformer model.Transformer
	Forest      *ensemble.RandomForestClassifier
}

// LoadBundle reconstructs the composite inference unit from a directory
// containing model.gob and preproc.gob.
func LoadBundle(dir string) (*Bundle, error) {
	transformer, err := preprocessing.LoadTransformer(filepath.Join(dir, PreprocFile))
	if err != nil {
		return nil, err
	}

	forest := &ensemble.RandomForestClassifier{}
	if err := model.LoadModel(forest, filepath.Join(dir, ModelFile)); err != nil {
		return nil, err
	}
	if !forest.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "LoadBundle")
	}

	return &Bundle{Transformer: transformer, Forest: forest}, nil
}

// Predict transforms X and returns the predicted labels as an n x 1 matrix.
func (b *Bundle) Predict(X mat.Matrix) (mat.Matrix, error) {
	transformed, err := b.Transformer.Transform(X)
	if err != nil {
		return nil, err
	}
	return b.Forest.Predict(transformed)
}

// PredictRows applies the unit to a batch of raw input rows and returns the
// predicted class labels.
func (b *Bundle) PredictRows(rows [][]float64) ([]int, error) {
	if len(rows) == 0 {
		return nil, errors.NewValueError("Bundle.PredictRows", "no input rows")
	}
	p := len(rows[0])
	X := mat.NewDense(len(rows), p, nil)
	for i, row := range rows {
		if len(row) != p {
			return nil, errors.NewDimensionError("Bundle.PredictRows", p, len(row), 1)
		}
		for j, v := range row {
			X.Set(i, j, v)
		}
	}

	pred, err := b.Predict(X)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(rows))
	for i := range labels {
		labels[i] = int(pred.At(i, 0))
	}
	return labels, nil
}
