// Package mlpipe implements a two-stage tabular classification workflow:
// a preprocessing stage that scales features and splits a raw CSV table
// into train/test partitions, and a training stage that fits a random
// forest, reports held-out accuracy and assembles a self-contained model
// directory. The inference package reloads that directory as a composite
// unit (scaler + forest) and applies it to batches of raw rows.
//
// The stages are wired for batch execution: each is a run-to-completion
// CLI (cmd/preprocess, cmd/train) communicating only through on-disk
// artifacts, so they can be scheduled as separate jobs. cmd/mlpipe runs
// the simpler monolithic variant, fitting scaler and forest inside one
// pipeline object persisted as a single artifact.
//
// Estimators follow a scikit-learn-like API on gonum matrices:
//
//	forest := ensemble.NewRandomForestClassifier(
//		ensemble.WithNEstimators(100),
//		ensemble.WithRandomState(42),
//	)
//	if err := forest.Fit(X, y); err != nil {
//		...
//	}
//	pred, err := forest.Predict(X)
package mlpipe
