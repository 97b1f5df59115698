package model

import "gonum.org/v1/gonum/mat"

// Transformer is the interface for fitted data transforms.
type Transformer interface {
	// Fit learns the transform parameters from the training data.
	Fit(X mat.Matrix) error

	// Transform applies the learned transform.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform runs Fit then Transform on the same data.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Fitter is the interface for supervised estimators.
type Fitter interface {
	// Fit trains the estimator on X with labels y (a column vector).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for estimators that can predict.
type Predictor interface {
	// Predict returns predictions for the rows of X as a column vector.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy on the given data and labels.
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier combines the interfaces of classification models.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba returns per-class probability estimates.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique class labels seen during fitting.
	Classes() []int
}
