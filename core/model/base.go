// Package model defines the estimator contracts shared by every stage of the
// pipeline: fit state tracking, the Transformer/Classifier interfaces, and
// gob persistence for artifacts.
package model

// EstimatorState represents the fit state of an estimator.
type EstimatorState int

const (
	// NotFitted means Fit has not been called yet.
	NotFitted EstimatorState = iota
	// Fitted means the estimator has learned its parameters.
	Fitted
)

// BaseEstimator is embedded by every estimator to track fit state.
type BaseEstimator struct {
	State EstimatorState // exported for gob encoding
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset returns the estimator to the unfitted state.
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}
