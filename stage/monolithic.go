package stage

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/YuminosukeSato/mlpipe/dataset"
	"github.com/YuminosukeSato/mlpipe/ensemble"
	"github.com/YuminosukeSato/mlpipe/pipeline"
	"github.com/YuminosukeSato/mlpipe/pkg/errors"
	"github.com/YuminosukeSato/mlpipe/pkg/log"
)

// MonolithicConfig configures the single-run variant, which fits the scaler
// and the forest inside one pipeline object and persists one artifact.
type MonolithicConfig struct {
	// InputPath is the raw CSV table.
	InputPath string `yaml:"input_path"`

	// ModelPath is the single serialized pipeline artifact.
	ModelPath string `yaml:"model_path"`

	Label          string  `yaml:"label"`
	Scaler         string  `yaml:"scaler"`
	TestSize       float64 `yaml:"test_size"`
	NEstimators    int     `yaml:"n_estimators"`
	MinSamplesLeaf int     `yaml:"min_samples_leaf"`
	Seed           int64   `yaml:"seed"`
}

// MonolithicResult summarizes a completed single-run.
type MonolithicResult struct {
	ModelPath string
	Accuracy  float64
}

func (c MonolithicConfig) withDefaults() MonolithicConfig {
	if c.Label == "" {
		c.Label = "y"
	}
	if c.Scaler == "" {
		c.Scaler = ScalerStandard
	}
	if c.TestSize == 0 {
		c.TestSize = 0.25
	}
	if c.NEstimators == 0 {
		c.NEstimators = 100
	}
	if c.MinSamplesLeaf == 0 {
		c.MinSamplesLeaf = 1
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

func (c MonolithicConfig) validate() error {
	if c.InputPath == "" {
		return errors.NewValueError("stage.RunMonolithic", "input_path is required")
	}
	if c.ModelPath == "" {
		return errors.NewValueError("stage.RunMonolithic", "model_path is required")
	}
	if c.Scaler != ScalerStandard && c.Scaler != ScalerMinMax {
		return errors.Newf("stage.RunMonolithic: unknown scaler %q", c.Scaler)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return errors.NewValueError("stage.RunMonolithic", "test_size must be in (0, 1)")
	}
	return nil
}

// RunMonolithic runs preprocessing and training as one sequential pipeline:
// split the raw table, fit scaler+forest on the training partition, report
// held-out accuracy, and persist the whole pipeline as a single artifact.
// Unlike the two-stage flow there is no separate transform artifact; the
// scaler only exists inside the serialized pipeline.
func RunMonolithic(cfg MonolithicConfig) (result *MonolithicResult, err error) {
	defer errors.Recover(&err, "stage.RunMonolithic")

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	table, err := dataset.Load(cfg.InputPath, cfg.Label)
	if err != nil {
		return nil, err
	}
	train, test, err := dataset.TrainTestSplit(table, cfg.TestSize, cfg.Seed)
	if err != nil {
		return nil, err
	}
	slog.Info("split raw table",
		slog.String(log.StageKey, "monolithic"),
		slog.String(log.OperationKey, "split"),
		slog.Int(log.TrainRowsKey, train.NumSamples()),
		slog.Int(log.TestRowsKey, test.NumSamples()),
		slog.Int64(log.SeedKey, cfg.Seed),
	)

	scaler, err := newScaler(cfg.Scaler)
	if err != nil {
		return nil, err
	}
	pipe := pipeline.New(
		ensemble.NewRandomForestClassifier(
			ensemble.WithNEstimators(cfg.NEstimators),
			ensemble.WithMinSamplesLeaf(cfg.MinSamplesLeaf),
			ensemble.WithRandomState(cfg.Seed),
		),
		pipeline.Step{Name: "scaler", Transformer: scaler},
	)
	if err := pipe.Fit(train.X, train.Y); err != nil {
		return nil, err
	}
	acc, err := pipe.Score(test.X, test.Y)
	if err != nil {
		return nil, err
	}
	slog.Info("fitted pipeline",
		slog.String(log.StageKey, "monolithic"),
		slog.String(log.OperationKey, "fit"),
		slog.String(log.ModelNameKey, "Pipeline"),
		slog.Float64(log.AccuracyKey, acc),
	)

	if dir := filepath.Dir(cfg.ModelPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewArtifactError("stage.RunMonolithic", dir, err)
		}
	}
	if err := pipe.Save(cfg.ModelPath); err != nil {
		return nil, err
	}
	slog.Info("monolithic run complete",
		slog.String(log.StageKey, "monolithic"),
		slog.String(log.ArtifactKey, cfg.ModelPath),
		slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()),
	)
	return &MonolithicResult{ModelPath: cfg.ModelPath, Accuracy: acc}, nil
}
