package dataset

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlpipe/pkg/errors"
)

// TrainTestSplit partitions a table into train and test tables by seeded
// random sampling without replacement.
//
// testSize is the fraction of rows assigned to the test partition, in (0, 1).
// The same seed always produces the same partition, which is what makes the
// preprocessing stage reproducible across runs.
func TrainTestSplit(t *Table, testSize float64, seed int64) (train, test *Table, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValueError("dataset.TrainTestSplit", "testSize must be in (0, 1)")
	}

	n := t.NumSamples()
	if n < 2 {
		return nil, nil, errors.NewModelError("dataset.TrainTestSplit", "need at least 2 rows to split", errors.ErrEmptyData)
	}

	rnd := rand.New(rand.NewSource(seed))
	perm := rnd.Perm(n)

	nTest := int(float64(n) * testSize)
	if nTest == 0 {
		nTest = 1
	}
	if nTest == n {
		nTest = n - 1
	}

	test = t.takeRows(perm[:nTest])
	train = t.takeRows(perm[nTest:])
	return train, test, nil
}

// takeRows builds a new table from the given row indices, in order.
func (t *Table) takeRows(idx []int) *Table {
	_, p := t.X.Dims()
	X := mat.NewDense(len(idx), p, nil)
	Y := mat.NewDense(len(idx), 1, nil)
	for i, src := range idx {
		for j := 0; j < p; j++ {
			X.Set(i, j, t.X.At(src, j))
		}
		Y.Set(i, 0, t.Y.At(src, 0))
	}
	return &Table{
		FeatureNames: t.FeatureNames,
		LabelName:    t.LabelName,
		X:            X,
		Y:            Y,
	}
}
