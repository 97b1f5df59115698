// Package metrics implements the evaluation metrics reported by the training
// stage.
package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlpipe/pkg/errors"
)

// Accuracy returns the fraction of exactly matching labels in [0, 1].
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}

	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}

// AccuracyMatrix computes accuracy for column-vector matrices, the shape the
// classifiers produce from Predict.
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := dims(yTrue)
	rPred, cPred := dims(yPred)

	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("AccuracyMatrix", "empty matrix")
	}
	if cTrue != 1 || cPred != 1 {
		return 0, errors.NewValueError("AccuracyMatrix", "must be a column vector (n×1 matrix)")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AccuracyMatrix", rTrue, rPred, 0)
	}

	yTrueVec := mat.NewVecDense(rTrue, nil)
	yPredVec := mat.NewVecDense(rPred, nil)
	for i := 0; i < rTrue; i++ {
		yTrueVec.SetVec(i, yTrue.At(i, 0))
		yPredVec.SetVec(i, yPred.At(i, 0))
	}

	return Accuracy(yTrueVec, yPredVec)
}

// ClassificationError returns 1 - accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1.0 - acc, nil
}

// ClassCounts tallies predicted labels per class, in ascending label order.
// The report stage renders these counts for the held-out partition.
func ClassCounts(yPred mat.Matrix, classes []int) ([]int, error) {
	r, c := dims(yPred)
	if r == 0 {
		return nil, errors.NewValueError("ClassCounts", "empty matrix")
	}
	if c != 1 {
		return nil, errors.NewValueError("ClassCounts", "must be a column vector (n×1 matrix)")
	}

	index := make(map[int]int, len(classes))
	for i, cls := range classes {
		index[cls] = i
	}

	counts := make([]int, len(classes))
	for i := 0; i < r; i++ {
		label := int(yPred.At(i, 0))
		pos, ok := index[label]
		if !ok {
			return nil, errors.Newf("ClassCounts: predicted label %d not in classes %v", label, classes)
		}
		counts[pos]++
	}
	return counts, nil
}

func dims(m mat.Matrix) (int, int) {
	if m == nil {
		return 0, 0
	}
	return m.Dims()
}
