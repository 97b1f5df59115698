// Package pipeline implements the monolithic single-run variant: transform
// steps and the final classifier fitted in one sequential object, persisted
// as a single artifact with no separate transform file.
package pipeline

import (
	"encoding/gob"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlpipe/core/model"
	"github.com/YuminosukeSato/mlpipe/ensemble"
	"github.com/YuminosukeSato/mlpipe/pkg/errors"
	"github.com/YuminosukeSato/mlpipe/preprocessing"
	"github.com/YuminosukeSato/mlpipe/tree"
)

func init() {
	// Concrete step types that may appear behind the interface fields when a
	// pipeline artifact is gob-encoded.
	gob.Register(&preprocessing.StandardScaler{})
	gob.Register(&preprocessing.MinMaxScaler{})
	gob.Register(&ensemble.RandomForestClassifier{})
	gob.Register(&tree.DecisionTreeClassifier{})
}

// Step is one named transform in the pipeline.
type Step struct {
	Name        string
	Transformer model.Transformer
}

// Pipeline chains transform steps into a final classifier. Fit runs
// FitTransform through every step and then fits the classifier on the
// resulting features; Predict replays the fitted transforms.
type Pipeline struct {
	model.BaseEstimator

	Steps      []Step
	Classifier model.Classifier
}

// New creates a pipeline ending in the given classifier.
func New(classifier model.Classifier, steps ...Step) *Pipeline {
	return &Pipeline{
		Steps:      steps,
		Classifier: classifier,
	}
}

// Fit fits every step on the (progressively transformed) training data and
// then the final classifier.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	if p.Classifier == nil {
		return errors.NewValueError("Pipeline.Fit", "pipeline has no final classifier")
	}

	current := X
	for _, step := range p.Steps {
		transformed, err := step.Transformer.FitTransform(current)
		if err != nil {
			return errors.Wrapf(err, "Pipeline.Fit: step %q", step.Name)
		}
		current = transformed
	}

	if err := p.Classifier.Fit(current, y); err != nil {
		return errors.Wrap(err, "Pipeline.Fit: classifier")
	}

	p.SetFitted()
	return nil
}

// Predict applies the fitted transforms in order and predicts with the final
// classifier.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	transformed, err := p.transform(X, "Predict")
	if err != nil {
		return nil, err
	}
	return p.Classifier.Predict(transformed)
}

// PredictProba applies the fitted transforms and returns the classifier's
// probability estimates.
func (p *Pipeline) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	transformed, err := p.transform(X, "PredictProba")
	if err != nil {
		return nil, err
	}
	return p.Classifier.PredictProba(transformed)
}

// Score returns the mean accuracy of the full pipeline on X against y.
func (p *Pipeline) Score(X, y mat.Matrix) (float64, error) {
	transformed, err := p.transform(X, "Score")
	if err != nil {
		return 0, err
	}
	return p.Classifier.Score(transformed, y)
}

// Classes returns the class labels of the final classifier.
func (p *Pipeline) Classes() []int {
	if p.Classifier == nil {
		return nil
	}
	return p.Classifier.Classes()
}

func (p *Pipeline) transform(X mat.Matrix, method string) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", method)
	}
	current := X
	for _, step := range p.Steps {
		transformed, err := step.Transformer.Transform(current)
		if err != nil {
			return nil, errors.Wrapf(err, "Pipeline.%s: step %q", method, step.Name)
		}
		current = transformed
	}
	return current, nil
}

// Save persists the whole pipeline as one artifact.
func (p *Pipeline) Save(path string) error {
	return model.SaveModel(p, path)
}

// Load reads a pipeline artifact written by Save.
func Load(path string) (*Pipeline, error) {
	p := &Pipeline{}
	if err := model.LoadModel(p, path); err != nil {
		return nil, err
	}
	return p, nil
}
