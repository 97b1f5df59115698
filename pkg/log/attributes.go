package log

// Standard attribute keys for pipeline operations. Using these keys keeps
// stage logs consistent so that runs can be filtered by stage, estimator,
// and data shape after the fact.

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "StandardScaler", "RandomForestClassifier"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "split", "save", "load"
	OperationKey = "ml.operation"

	// StageKey identifies the pipeline stage emitting the record.
	// Values: "preprocess", "train", "inference"
	StageKey = "ml.stage"
)

// Data shape.
const (
	// SamplesKey is the number of rows in the table being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// TrainRowsKey and TestRowsKey describe a train/test partition.
	TrainRowsKey = "data.train_rows"
	TestRowsKey  = "data.test_rows"
)

// Results and artifacts.
const (
	// AccuracyKey is the held-out accuracy reported by the training stage.
	AccuracyKey = "metric.accuracy"

	// ArtifactKey is the path of a persisted artifact.
	ArtifactKey = "artifact.path"

	// DurationMsKey is the wall time of an operation in milliseconds.
	DurationMsKey = "duration_ms"

	// SeedKey is the random seed governing a split or a fit.
	SeedKey = "ml.seed"
)
