package stage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/YuminosukeSato/mlpipe/core/model"
	"github.com/YuminosukeSato/mlpipe/dataset"
	"github.com/YuminosukeSato/mlpipe/ensemble"
	"github.com/YuminosukeSato/mlpipe/inference"
	"github.com/YuminosukeSato/mlpipe/metrics"
	"github.com/YuminosukeSato/mlpipe/pkg/errors"
	"github.com/YuminosukeSato/mlpipe/pkg/log"
	"github.com/YuminosukeSato/mlpipe/report"
)

// TrainResult summarizes a completed training run.
type TrainResult struct {
	// ModelPath and PreprocPath are the artifacts written under the model
	// directory. PreprocPath is a byte-for-byte copy of the preprocessing
	// stage's scaler artifact.
	ModelPath   string
	PreprocPath string

	// ReportPath is the rendered training report, or "" when reporting is
	// disabled or rendering failed.
	ReportPath string

	// Accuracy is the held-out accuracy on the test table.
	Accuracy float64
}

// Train runs the training stage: load the transformed train/test tables,
// fit a random forest on the training table, evaluate accuracy on the test
// table, and assemble the model directory:
//
//	<model_dir>/model.gob    — the fitted forest
//	<model_dir>/preproc.gob  — copied from scaler_path, never refitted
//	<model_dir>/report.png   — optional per-class prediction report
//
// The copied scaler travels with the model so that the directory alone is a
// complete inference unit.
func Train(cfg TrainConfig) (result *TrainResult, err error) {
	defer errors.Recover(&err, "stage.Train")

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	train, err := dataset.Load(cfg.TrainPath, cfg.Label)
	if err != nil {
		return nil, err
	}
	test, err := dataset.Load(cfg.TestPath, cfg.Label)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded transformed tables",
		slog.String(log.StageKey, "train"),
		slog.String(log.OperationKey, "load"),
		slog.Int(log.TrainRowsKey, train.NumSamples()),
		slog.Int(log.TestRowsKey, test.NumSamples()),
		slog.Int(log.FeaturesKey, train.NumFeatures()),
	)

	forest := ensemble.NewRandomForestClassifier(
		ensemble.WithNEstimators(cfg.NEstimators),
		ensemble.WithMinSamplesLeaf(cfg.MinSamplesLeaf),
		ensemble.WithRandomState(cfg.Seed),
	)
	fitStart := time.Now()
	if err := forest.Fit(train.X, train.Y); err != nil {
		return nil, err
	}
	slog.Info("fitted forest",
		slog.String(log.StageKey, "train"),
		slog.String(log.OperationKey, "fit"),
		slog.String(log.ModelNameKey, "RandomForestClassifier"),
		slog.Int64(log.SeedKey, cfg.Seed),
		slog.Int64(log.DurationMsKey, time.Since(fitStart).Milliseconds()),
	)

	pred, err := forest.Predict(test.X)
	if err != nil {
		return nil, err
	}
	acc, err := metrics.AccuracyMatrix(test.Y, pred)
	if err != nil {
		return nil, err
	}
	slog.Info("evaluated on test table",
		slog.String(log.StageKey, "train"),
		slog.String(log.OperationKey, "predict"),
		slog.Float64(log.AccuracyKey, acc),
	)

	if err := os.MkdirAll(cfg.ModelDir, 0o755); err != nil {
		return nil, errors.NewArtifactError("stage.Train", cfg.ModelDir, err)
	}
	res := &TrainResult{
		ModelPath:   filepath.Join(cfg.ModelDir, inference.ModelFile),
		PreprocPath: filepath.Join(cfg.ModelDir, inference.PreprocFile),
		Accuracy:    acc,
	}
	if err := model.SaveModel(forest, res.ModelPath); err != nil {
		return nil, err
	}
	if err := copyFile(cfg.ScalerPath, res.PreprocPath); err != nil {
		return nil, err
	}

	if cfg.Report {
		counts, err := metrics.ClassCounts(pred, forest.Classes())
		if err != nil {
			return nil, err
		}
		reportPath := filepath.Join(cfg.ModelDir, report.FileName)
		if err := report.SaveTrainingReport(reportPath, acc, forest.Classes(), counts); err != nil {
			// The report is a convenience; a failed render does not fail
			// the run.
			slog.Warn("could not render training report",
				slog.String(log.StageKey, "train"),
				slog.String(log.ArtifactKey, reportPath),
				log.ErrAttr(err),
			)
		} else {
			res.ReportPath = reportPath
		}
	}

	slog.Info("training complete",
		slog.String(log.StageKey, "train"),
		slog.String(log.ArtifactKey, cfg.ModelDir),
		slog.Float64(log.AccuracyKey, acc),
		slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()),
	)
	return res, nil
}

// copyFile copies src to dst byte for byte.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.NewArtifactError("stage.Train", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return errors.NewArtifactError("stage.Train", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.NewArtifactError("stage.Train", dst, err)
	}
	if err := out.Close(); err != nil {
		return errors.NewArtifactError("stage.Train", dst, err)
	}
	return nil
}
