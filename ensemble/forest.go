// Package ensemble implements the random forest classifier fitted by the
// training stage.
package ensemble

import (
	"bytes"
	"encoding/gob"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlpipe/core/model"
	"github.com/YuminosukeSato/mlpipe/core/parallel"
	"github.com/YuminosukeSato/mlpipe/pkg/errors"
	"github.com/YuminosukeSato/mlpipe/tree"
)

// RandomForestClassifier is a bagging ensemble of CART trees with soft
// voting: per-class probabilities are averaged over the trees and the argmax
// wins.
//
// Fitting is deterministic for a fixed RandomState: tree i always derives
// its seed as RandomState+i, regardless of how the work is scheduled.
type RandomForestClassifier struct {
	model.BaseEstimator

	// NEstimators is the number of trees (default 100).
	NEstimators int

	// MaxDepth limits each tree's depth. 0 means unlimited.
	MaxDepth int

	// MinSamplesSplit is the minimum samples to attempt a split.
	MinSamplesSplit int

	// MinSamplesLeaf is the minimum samples required in each leaf.
	MinSamplesLeaf int

	// MaxFeatures is the number of features sampled per split.
	// 0 means sqrt(n_features), the usual classification default.
	MaxFeatures int

	// Bootstrap controls whether trees are fitted on bootstrap samples.
	Bootstrap bool

	// RandomState seeds the ensemble. -1 means nondeterministic.
	RandomState int64

	// Trees are the fitted base learners.
	Trees []*tree.DecisionTreeClassifier

	// ClassLabels are the unique class labels seen during fitting, ascending.
	ClassLabels []int

	// NFeatures is the number of feature columns seen during fitting.
	NFeatures int
}

// Option is a functional option for RandomForestClassifier.
type Option func(*RandomForestClassifier)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(rf *RandomForestClassifier) { rf.NEstimators = n }
}

// WithMaxDepth limits each tree's depth. 0 means unlimited.
func WithMaxDepth(d int) Option {
	return func(rf *RandomForestClassifier) { rf.MaxDepth = d }
}

// WithMinSamplesSplit sets the minimum samples to attempt a split.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestClassifier) { rf.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples required in each leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestClassifier) { rf.MinSamplesLeaf = n }
}

// WithMaxFeatures sets the number of features sampled per split.
func WithMaxFeatures(k int) Option {
	return func(rf *RandomForestClassifier) { rf.MaxFeatures = k }
}

// WithBootstrap controls bootstrap sampling.
func WithBootstrap(b bool) Option {
	return func(rf *RandomForestClassifier) { rf.Bootstrap = b }
}

// WithRandomState seeds the ensemble.
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestClassifier) { rf.RandomState = seed }
}

// NewRandomForestClassifier creates a forest with sensible defaults.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		Bootstrap:       true,
		RandomState:     -1,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the forest on X (n x p) and y (n x 1 column of class labels).
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("RandomForestClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	yr, yc := y.Dims()
	if yr != n {
		return errors.NewDimensionError("RandomForestClassifier.Fit", n, yr, 0)
	}
	if yc != 1 {
		return errors.NewValueError("RandomForestClassifier.Fit", "y must be a column vector (n×1 matrix)")
	}
	if rf.NEstimators < 1 {
		return errors.NewValueError("RandomForestClassifier.Fit", "NEstimators must be >= 1")
	}

	maxFeatures := rf.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Sqrt(float64(p)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	baseSeed := rf.RandomState
	if baseSeed < 0 {
		baseSeed = rand.Int63()
	}

	rf.Trees = make([]*tree.DecisionTreeClassifier, rf.NEstimators)
	fitErrs := make([]error, rf.NEstimators)

	parallel.Parallelize(rf.NEstimators, func(start, end int) {
		for i := start; i < end; i++ {
			// Per-tree generator so scheduling does not affect the result.
			treeSeed := baseSeed + int64(i)
			rnd := rand.New(rand.NewSource(treeSeed))

			var sampleIdx []int
			if rf.Bootstrap {
				sampleIdx = make([]int, n)
				for j := 0; j < n; j++ {
					sampleIdx[j] = rnd.Intn(n)
				}
			}

			dt := tree.NewDecisionTreeClassifier(
				tree.WithMaxDepth(rf.MaxDepth),
				tree.WithMinSamplesSplit(rf.MinSamplesSplit),
				tree.WithMinSamplesLeaf(rf.MinSamplesLeaf),
				tree.WithMaxFeatures(maxFeatures),
				tree.WithRandomState(treeSeed),
			)
			if err := dt.FitIndices(X, y, sampleIdx); err != nil {
				fitErrs[i] = err
				return
			}
			rf.Trees[i] = dt
		}
	})

	for _, err := range fitErrs {
		if err != nil {
			return err
		}
	}

	rf.ClassLabels = rf.Trees[0].Classes()
	rf.NFeatures = p
	rf.SetFitted()
	return nil
}

// Predict returns the majority-vote class labels for the rows of X as an
// n x 1 matrix.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	probas, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}

	n, k := probas.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		best := 0
		for j := 1; j < k; j++ {
			if probas.At(i, j) > probas.At(i, best) {
				best = j
			}
		}
		out.Set(i, 0, float64(rf.ClassLabels[best]))
	}
	return out, nil
}

// PredictProba returns class probabilities averaged over all trees, one
// column per class in ascending label order.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}
	n, p := X.Dims()
	if p != rf.NFeatures {
		return nil, errors.NewDimensionError("RandomForestClassifier.PredictProba", rf.NFeatures, p, 1)
	}

	k := len(rf.ClassLabels)
	sums := make([][]float64, len(rf.Trees))

	parallel.Parallelize(len(rf.Trees), func(start, end int) {
		for t := start; t < end; t++ {
			probas, err := rf.Trees[t].PredictProba(X)
			if err != nil {
				// Trees share the forest's feature count; a failure here is a
				// programming error surfaced by the nil slice below.
				continue
			}
			flat := make([]float64, n*k)
			for i := 0; i < n; i++ {
				for j := 0; j < k; j++ {
					flat[i*k+j] = probas.At(i, j)
				}
			}
			sums[t] = flat
		}
	})

	out := mat.NewDense(n, k, nil)
	for t := range sums {
		if sums[t] == nil {
			return nil, errors.NewModelError("RandomForestClassifier.PredictProba", "tree prediction failed", nil)
		}
		for i := 0; i < n; i++ {
			for j := 0; j < k; j++ {
				out.Set(i, j, out.At(i, j)+sums[t][i*k+j])
			}
		}
	}

	scale := 1.0 / float64(len(rf.Trees))
	out.Scale(scale, out)
	return out, nil
}

// Score returns the mean accuracy of the forest on X against labels y.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}

	n, _ := y.Dims()
	if n == 0 {
		return 0, errors.NewValueError("RandomForestClassifier.Score", "empty labels")
	}
	correct := 0
	for i := 0; i < n; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// Classes returns the unique class labels seen during fitting, ascending.
func (rf *RandomForestClassifier) Classes() []int {
	out := make([]int, len(rf.ClassLabels))
	copy(out, rf.ClassLabels)
	return out
}

// FeatureImportances returns impurity-decrease importances averaged over the
// trees, normalized to sum to 1.
func (rf *RandomForestClassifier) FeatureImportances() ([]float64, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "FeatureImportances")
	}

	out := make([]float64, rf.NFeatures)
	for _, dt := range rf.Trees {
		for j, v := range dt.GetFeatureImportances() {
			out[j] += v
		}
	}
	total := 0.0
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for j := range out {
			out[j] /= total
		}
	}
	return out, nil
}

// GetParams returns the forest's hyperparameters.
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      rf.NEstimators,
		"max_depth":         rf.MaxDepth,
		"min_samples_split": rf.MinSamplesSplit,
		"min_samples_leaf":  rf.MinSamplesLeaf,
		"max_features":      rf.MaxFeatures,
		"bootstrap":         rf.Bootstrap,
		"random_state":      rf.RandomState,
	}
}

// forestGob mirrors the forest for encoding/gob; tree serialization is
// handled by the tree type's own GobEncode.
type forestGob struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64
	Trees           []*tree.DecisionTreeClassifier
	ClassLabels     []int
	NFeatures       int
	Fitted          bool
}

// GobEncode implements gob.GobEncoder.
func (rf *RandomForestClassifier) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(forestGob{
		NEstimators:     rf.NEstimators,
		MaxDepth:        rf.MaxDepth,
		MinSamplesSplit: rf.MinSamplesSplit,
		MinSamplesLeaf:  rf.MinSamplesLeaf,
		MaxFeatures:     rf.MaxFeatures,
		Bootstrap:       rf.Bootstrap,
		RandomState:     rf.RandomState,
		Trees:           rf.Trees,
		ClassLabels:     rf.ClassLabels,
		NFeatures:       rf.NFeatures,
		Fitted:          rf.IsFitted(),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (rf *RandomForestClassifier) GobDecode(data []byte) error {
	var fg forestGob
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&fg); err != nil {
		return err
	}
	rf.NEstimators = fg.NEstimators
	rf.MaxDepth = fg.MaxDepth
	rf.MinSamplesSplit = fg.MinSamplesSplit
	rf.MinSamplesLeaf = fg.MinSamplesLeaf
	rf.MaxFeatures = fg.MaxFeatures
	rf.Bootstrap = fg.Bootstrap
	rf.RandomState = fg.RandomState
	rf.Trees = fg.Trees
	rf.ClassLabels = fg.ClassLabels
	rf.NFeatures = fg.NFeatures
	if fg.Fitted {
		rf.SetFitted()
	}
	return nil
}
