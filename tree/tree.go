// Package tree implements a CART decision tree classifier. It is the base
// learner for the random forest in the ensemble package.
package tree

import (
	"bytes"
	"encoding/gob"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlpipe/core/model"
	"github.com/YuminosukeSato/mlpipe/pkg/errors"
)

// Node is a single node of a fitted tree. All fields are exported so a tree
// survives gob serialization inside a model artifact.
type Node struct {
	// Leaf marks a terminal node.
	Leaf bool

	// Feature and Threshold define the split: x[Feature] <= Threshold goes left.
	Feature   int
	Threshold float64

	Left  *Node
	Right *Node

	// NSamples is the number of training samples that reached the node.
	NSamples int

	// Probas is the class probability distribution at a leaf, aligned with
	// the classifier's Classes().
	Probas []float64

	// PredIndex is the index into Classes() of the majority class.
	PredIndex int
}

// DecisionTreeClassifier is a CART-style classifier over numeric features.
type DecisionTreeClassifier struct {
	model.BaseEstimator

	// hyperparameters
	criterion           string  // "gini" or "entropy"
	maxDepth            int     // 0 => no limit
	minSamplesSplit     int     // minimum samples to attempt a split
	minSamplesLeaf      int     // minimum samples required in each leaf
	maxFeatures         int     // 0 => all features, >0 => features sampled per split
	minImpurityDecrease float64 // minimal gain to accept a split
	randomState         int64   // seed for feature subsampling, -1 => nondeterministic

	// learned state
	root               *Node
	classes_           []int
	nClasses_          int
	nFeatures_         int
	featureImportances []float64
}

// Option is a functional option for DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithCriterion sets the impurity criterion, "gini" or "entropy".
func WithCriterion(c string) Option { return func(t *DecisionTreeClassifier) { t.criterion = c } }

// WithMaxDepth sets the maximum tree depth. 0 means unlimited.
func WithMaxDepth(d int) Option { return func(t *DecisionTreeClassifier) { t.maxDepth = d } }

// WithMinSamplesSplit sets the minimum samples to attempt a split.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples required in each leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.minSamplesLeaf = n }
}

// WithMaxFeatures sets the number of features sampled when searching a split.
func WithMaxFeatures(k int) Option { return func(t *DecisionTreeClassifier) { t.maxFeatures = k } }

// WithMinImpurityDecrease sets the minimal impurity decrease to accept a split.
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeClassifier) { t.minImpurityDecrease = v }
}

// WithRandomState sets the seed for feature subsampling.
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeClassifier) { t.randomState = seed }
}

// NewDecisionTreeClassifier returns a classifier with sensible defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	d := &DecisionTreeClassifier{
		criterion:           "gini",
		maxDepth:            0,
		minSamplesSplit:     2,
		minSamplesLeaf:      1,
		maxFeatures:         0,
		minImpurityDecrease: 0.0,
		randomState:         -1,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Fit trains the tree on X (n x p) and y (n x 1 column of class labels).
func (t *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	return t.FitIndices(X, y, nil)
}

// FitIndices trains the tree on the rows of X selected by sampleIdx. A nil
// sampleIdx uses every row. The ensemble passes bootstrap index sets here so
// sampling never copies the data.
func (t *DecisionTreeClassifier) FitIndices(X, y mat.Matrix, sampleIdx []int) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	yr, yc := y.Dims()
	if yr != n {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", n, yr, 0)
	}
	if yc != 1 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "y must be a column vector (n×1 matrix)")
	}

	labels := make([]int, n)
	for i := 0; i < n; i++ {
		labels[i] = int(y.At(i, 0))
	}

	// Unique classes in ascending order so class index == column index in
	// PredictProba regardless of label order in y.
	seen := map[int]struct{}{}
	t.classes_ = nil
	for _, lab := range labels {
		if _, ok := seen[lab]; !ok {
			seen[lab] = struct{}{}
			t.classes_ = append(t.classes_, lab)
		}
	}
	sort.Ints(t.classes_)
	t.nClasses_ = len(t.classes_)
	if t.nClasses_ == 0 {
		return errors.WithStack(errors.ErrNoClasses)
	}
	t.nFeatures_ = p

	classIndex := make(map[int]int, t.nClasses_)
	for i, c := range t.classes_ {
		classIndex[c] = i
	}

	idx := sampleIdx
	if idx == nil {
		idx = make([]int, n)
		for i := range idx {
			idx[i] = i
		}
	}

	seed := t.randomState
	if seed < 0 {
		seed = rand.Int63()
	}
	rnd := rand.New(rand.NewSource(seed))

	impurity := giniFromCounts
	if t.criterion == "entropy" {
		impurity = entropyFromCounts
	}

	t.featureImportances = make([]float64, p)
	t.root = t.buildNode(X, labels, classIndex, idx, 0, len(idx), impurity, rnd)

	// Normalize importances.
	total := 0.0
	for _, v := range t.featureImportances {
		total += v
	}
	if total > 0 {
		for i := range t.featureImportances {
			t.featureImportances[i] /= total
		}
	}

	t.SetFitted()
	return nil
}

// Predict returns the predicted class labels for the rows of X as an n x 1 matrix.
func (t *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}
	n, p := X.Dims()
	if p != t.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.Predict", t.nFeatures_, p, 1)
	}

	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		probas := t.predictProbaRow(X, i)
		best := 0
		for j := 1; j < len(probas); j++ {
			if probas[j] > probas[best] {
				best = j
			}
		}
		out.Set(i, 0, float64(t.classes_[best]))
	}
	return out, nil
}

// PredictProba returns the per-class probability estimates, one column per
// class in ascending label order.
func (t *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	n, p := X.Dims()
	if p != t.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", t.nFeatures_, p, 1)
	}

	out := mat.NewDense(n, t.nClasses_, nil)
	for i := 0; i < n; i++ {
		probas := t.predictProbaRow(X, i)
		for j, v := range probas {
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// Score returns the mean accuracy of the tree on X against labels y.
func (t *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	pred, err := t.Predict(X)
	if err != nil {
		return 0
	}
	n, _ := y.Dims()
	if n == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < n; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n)
}

// Classes returns the unique class labels seen during fitting, ascending.
func (t *DecisionTreeClassifier) Classes() []int {
	out := make([]int, len(t.classes_))
	copy(out, t.classes_)
	return out
}

// GetFeatureImportances returns the normalized impurity-decrease importances.
func (t *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	out := make([]float64, len(t.featureImportances))
	copy(out, t.featureImportances)
	return out
}

// GetDepth returns the depth of the fitted tree (root at depth 0).
func (t *DecisionTreeClassifier) GetDepth() int {
	return nodeDepth(t.root)
}

// GetNLeaves returns the number of leaves in the fitted tree.
func (t *DecisionTreeClassifier) GetNLeaves() int {
	return nodeLeaves(t.root)
}

// GetParams returns the tree's hyperparameters.
func (t *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":             t.criterion,
		"max_depth":             t.maxDepth,
		"min_samples_split":     t.minSamplesSplit,
		"min_samples_leaf":      t.minSamplesLeaf,
		"max_features":          t.maxFeatures,
		"min_impurity_decrease": t.minImpurityDecrease,
		"random_state":          t.randomState,
	}
}

// SetParams updates hyperparameters from a map. Unknown keys are rejected.
func (t *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "criterion":
			v, ok := value.(string)
			if !ok || (v != "gini" && v != "entropy") {
				return errors.NewValueError("DecisionTreeClassifier.SetParams", "criterion must be \"gini\" or \"entropy\"")
			}
			t.criterion = v
		case "max_depth":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError("DecisionTreeClassifier.SetParams", "max_depth must be an int")
			}
			t.maxDepth = v
		case "min_samples_split":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError("DecisionTreeClassifier.SetParams", "min_samples_split must be an int")
			}
			t.minSamplesSplit = v
		case "min_samples_leaf":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError("DecisionTreeClassifier.SetParams", "min_samples_leaf must be an int")
			}
			t.minSamplesLeaf = v
		case "max_features":
			v, ok := value.(int)
			if !ok {
				return errors.NewValueError("DecisionTreeClassifier.SetParams", "max_features must be an int")
			}
			t.maxFeatures = v
		case "min_impurity_decrease":
			v, ok := value.(float64)
			if !ok {
				return errors.NewValueError("DecisionTreeClassifier.SetParams", "min_impurity_decrease must be a float64")
			}
			t.minImpurityDecrease = v
		case "random_state":
			v, ok := value.(int64)
			if !ok {
				return errors.NewValueError("DecisionTreeClassifier.SetParams", "random_state must be an int64")
			}
			t.randomState = v
		default:
			return errors.Newf("DecisionTreeClassifier.SetParams: unknown parameter %q", key)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// building
// ---------------------------------------------------------------------------

type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
}

func (t *DecisionTreeClassifier) buildNode(X mat.Matrix, y []int, classIndex map[int]int, idx []int, depth, nTotal int, impurity func([]int) float64, rnd *rand.Rand) *Node {
	node := &Node{NSamples: len(idx)}

	counts := make([]int, t.nClasses_)
	for _, ii := range idx {
		counts[classIndex[y[ii]]]++
	}

	if isPure(counts) ||
		len(idx) < t.minSamplesSplit ||
		(t.maxDepth > 0 && depth >= t.maxDepth) {
		makeLeaf(node, counts)
		return node
	}

	_, p := X.Dims()
	featIndices := make([]int, p)
	for j := 0; j < p; j++ {
		featIndices[j] = j
	}
	if t.maxFeatures > 0 && t.maxFeatures < p {
		rnd.Shuffle(p, func(a, b int) {
			featIndices[a], featIndices[b] = featIndices[b], featIndices[a]
		})
		featIndices = featIndices[:t.maxFeatures]
	}

	parentImpurity := impurity(counts)
	best := splitResult{feature: -1}
	for _, f := range featIndices {
		res := t.findBestSplitForFeature(X, y, classIndex, idx, f, parentImpurity, impurity)
		if res.feature >= 0 && res.gain > best.gain {
			best = res
		}
	}

	if best.feature < 0 || best.gain <= t.minImpurityDecrease {
		makeLeaf(node, counts)
		return node
	}

	// Weighted impurity decrease accumulated per split feature.
	t.featureImportances[best.feature] += float64(len(idx)) / float64(nTotal) * best.gain

	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = t.buildNode(X, y, classIndex, best.leftIdx, depth+1, nTotal, impurity, rnd)
	node.Right = t.buildNode(X, y, classIndex, best.rightIdx, depth+1, nTotal, impurity, rnd)
	return node
}

// findBestSplitForFeature scans the sorted values of one feature for the
// threshold with the largest impurity decrease.
func (t *DecisionTreeClassifier) findBestSplitForFeature(X mat.Matrix, y []int, classIndex map[int]int, idx []int, f int, parentImpurity float64, impurity func([]int) float64) splitResult {
	result := splitResult{feature: -1}

	type pair struct {
		v float64
		i int
	}
	vals := make([]pair, len(idx))
	for k, ii := range idx {
		vals[k] = pair{X.At(ii, f), ii}
	}
	sort.Slice(vals, func(a, b int) bool { return vals[a].v < vals[b].v })

	nIdx := len(idx)
	leftCounts := make([]int, t.nClasses_)
	rightCounts := make([]int, t.nClasses_)
	for _, pv := range vals {
		rightCounts[classIndex[y[pv.i]]]++
	}

	// Move samples left one at a time; candidate thresholds sit between
	// adjacent distinct values.
	for s := 1; s < nIdx; s++ {
		ci := classIndex[y[vals[s-1].i]]
		leftCounts[ci]++
		rightCounts[ci]--

		if vals[s].v == vals[s-1].v {
			continue
		}
		if s < t.minSamplesLeaf || nIdx-s < t.minSamplesLeaf {
			continue
		}

		impL := impurity(leftCounts)
		impR := impurity(rightCounts)
		weighted := float64(s)/float64(nIdx)*impL + float64(nIdx-s)/float64(nIdx)*impR
		gain := parentImpurity - weighted
		if gain > result.gain {
			result.gain = gain
			result.feature = f
			result.threshold = (vals[s-1].v + vals[s].v) / 2.0
		}
	}

	if result.feature < 0 {
		return result
	}

	// Materialize the index partition for the winning threshold only.
	for _, pv := range vals {
		if pv.v <= result.threshold {
			result.leftIdx = append(result.leftIdx, pv.i)
		} else {
			result.rightIdx = append(result.rightIdx, pv.i)
		}
	}
	return result
}

func makeLeaf(node *Node, counts []int) {
	node.Leaf = true
	node.Probas = countsToProbas(counts)
	node.PredIndex = argmax(counts)
}

func (t *DecisionTreeClassifier) predictProbaRow(X mat.Matrix, i int) []float64 {
	if t.root == nil {
		p := make([]float64, t.nClasses_)
		for j := range p {
			p[j] = 1.0 / float64(t.nClasses_)
		}
		return p
	}
	node := t.root
	for !node.Leaf {
		if X.At(i, node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Probas
}

// ---------------------------------------------------------------------------
// impurity and tree walking helpers
// ---------------------------------------------------------------------------

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / n
		res += p * (1 - p)
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	p := make([]float64, len(counts))
	if n == 0 {
		return p
	}
	for i := range counts {
		p[i] = float64(counts[i]) / float64(n)
	}
	return p
}

func argmax(counts []int) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}

func nodeDepth(n *Node) int {
	if n == nil || n.Leaf {
		return 0
	}
	l := nodeDepth(n.Left)
	r := nodeDepth(n.Right)
	if l > r {
		return l + 1
	}
	return r + 1
}

func nodeLeaves(n *Node) int {
	if n == nil {
		return 0
	}
	if n.Leaf {
		return 1
	}
	return nodeLeaves(n.Left) + nodeLeaves(n.Right)
}

// ---------------------------------------------------------------------------
// persistence
// ---------------------------------------------------------------------------

// treeGob mirrors the classifier with exported fields for encoding/gob.
type treeGob struct {
	Criterion           string
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	MaxFeatures         int
	MinImpurityDecrease float64
	RandomState         int64
	Root                *Node
	Classes             []int
	NFeatures           int
	FeatureImportances  []float64
	Fitted              bool
}

// GobEncode implements gob.GobEncoder so a fitted tree can be embedded in a
// persisted model artifact.
func (t *DecisionTreeClassifier) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(treeGob{
		Criterion:           t.criterion,
		MaxDepth:            t.maxDepth,
		MinSamplesSplit:     t.minSamplesSplit,
		MinSamplesLeaf:      t.minSamplesLeaf,
		MaxFeatures:         t.maxFeatures,
		MinImpurityDecrease: t.minImpurityDecrease,
		RandomState:         t.randomState,
		Root:                t.root,
		Classes:             t.classes_,
		NFeatures:           t.nFeatures_,
		FeatureImportances:  t.featureImportances,
		Fitted:              t.IsFitted(),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (t *DecisionTreeClassifier) GobDecode(data []byte) error {
	var tg treeGob
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&tg); err != nil {
		return err
	}
	t.criterion = tg.Criterion
	t.maxDepth = tg.MaxDepth
	t.minSamplesSplit = tg.MinSamplesSplit
	t.minSamplesLeaf = tg.MinSamplesLeaf
	t.maxFeatures = tg.MaxFeatures
	t.minImpurityDecrease = tg.MinImpurityDecrease
	t.randomState = tg.RandomState
	t.root = tg.Root
	t.classes_ = tg.Classes
	t.nClasses_ = len(tg.Classes)
	t.nFeatures_ = tg.NFeatures
	t.featureImportances = tg.FeatureImportances
	if tg.Fitted {
		t.SetFitted()
	}
	return nil
}
