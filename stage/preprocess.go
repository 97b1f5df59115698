package stage

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/YuminosukeSato/mlpipe/core/model"
	"github.com/YuminosukeSato/mlpipe/dataset"
	"github.com/YuminosukeSato/mlpipe/pkg/errors"
	"github.com/YuminosukeSato/mlpipe/pkg/log"
	"github.com/YuminosukeSato/mlpipe/preprocessing"
)

// PreprocessResult summarizes a completed preprocessing run.
type PreprocessResult struct {
	// TrainPath, TestPath and ScalerPath are the artifacts written under
	// the output directory.
	TrainPath  string
	TestPath   string
	ScalerPath string

	// TrainRows and TestRows are the partition sizes.
	TrainRows int
	TestRows  int
}

// newScaler constructs the configured transform, unfitted.
func newScaler(kind string) (model.Transformer, error) {
	switch kind {
	case ScalerStandard:
		return preprocessing.NewStandardScalerDefault(), nil
	case ScalerMinMax:
		return preprocessing.NewMinMaxScalerDefault(), nil
	default:
		return nil, errors.Newf("stage.Preprocess: unknown scaler %q", kind)
	}
}

// Preprocess runs the preprocessing stage: load the raw table, fit the
// configured scaler on all of it, transform, split into train/test with the
// configured seed, and persist the three artifacts:
//
//	<output_dir>/train/train.csv
//	<output_dir>/test/test.csv
//	<output_dir>/pipeline/scaler.gob
//
// The scaler is fitted before the split so that train and test share one
// set of scaling statistics; the serialized scaler is exactly the one that
// produced the transformed tables.
func Preprocess(cfg PreprocessConfig) (result *PreprocessResult, err error) {
	defer errors.Recover(&err, "stage.Preprocess")

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	table, err := dataset.Load(cfg.InputPath, cfg.Label)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded raw table",
		slog.String(log.StageKey, "preprocess"),
		slog.String(log.OperationKey, "load"),
		slog.Int(log.SamplesKey, table.NumSamples()),
		slog.Int(log.FeaturesKey, table.NumFeatures()),
	)

	scaler, err := newScaler(cfg.Scaler)
	if err != nil {
		return nil, err
	}
	scaled, err := scaler.FitTransform(table.X)
	if err != nil {
		return nil, err
	}
	table, err = table.WithMatrix(scaled)
	if err != nil {
		return nil, err
	}

	train, test, err := dataset.TrainTestSplit(table, cfg.TestSize, cfg.Seed)
	if err != nil {
		return nil, err
	}
	slog.Info("split table",
		slog.String(log.StageKey, "preprocess"),
		slog.String(log.OperationKey, "split"),
		slog.Int(log.TrainRowsKey, train.NumSamples()),
		slog.Int(log.TestRowsKey, test.NumSamples()),
		slog.Int64(log.SeedKey, cfg.Seed),
	)

	res := &PreprocessResult{
		TrainPath:  filepath.Join(cfg.OutputDir, TrainDirName, TrainFileName),
		TestPath:   filepath.Join(cfg.OutputDir, TestDirName, TestFileName),
		ScalerPath: filepath.Join(cfg.OutputDir, ScalerDirName, ScalerFileName),
		TrainRows:  train.NumSamples(),
		TestRows:   test.NumSamples(),
	}

	for _, dir := range []string{
		filepath.Dir(res.TrainPath),
		filepath.Dir(res.TestPath),
		filepath.Dir(res.ScalerPath),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewArtifactError("stage.Preprocess", dir, err)
		}
	}

	if err := train.Save(res.TrainPath); err != nil {
		return nil, err
	}
	if err := test.Save(res.TestPath); err != nil {
		return nil, err
	}
	if err := preprocessing.SaveTransformer(res.ScalerPath, scaler); err != nil {
		return nil, err
	}
	slog.Info("preprocessing complete",
		slog.String(log.StageKey, "preprocess"),
		slog.String(log.ArtifactKey, cfg.OutputDir),
		slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()),
	)
	return res, nil
}
