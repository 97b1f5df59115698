// Command train runs the training stage: it fits a random forest on the
// transformed train table, reports held-out accuracy on the test table and
// assembles the model directory (model.gob plus the copied-through scaler)
// that the inference package consumes as one unit.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/mlpipe/pkg/log"
	"github.com/YuminosukeSato/mlpipe/stage"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("MLPIPE_CONFIG"), "path to a YAML run configuration; flags override it")
		dataDir    = flag.String("data-dir", os.Getenv("MLPIPE_OUTPUT_DIR"), "preprocessing output directory holding train/, test/ and pipeline/")
		modelDir   = flag.String("model-dir", os.Getenv("MLPIPE_MODEL_DIR"), "output directory for model.gob and preproc.gob")
		label      = flag.String("label", "", "label column name (default y)")
		estimators = flag.Int("estimators", 0, "number of trees in the forest (default 100)")
		minLeaf    = flag.Int("min-samples-leaf", 0, "minimum samples per leaf (default 1)")
		seed       = flag.Int64("seed", 0, "random seed for the forest (default 42)")
		report     = flag.Bool("report", false, "render a PNG training report into the model directory")
		logLevel   = flag.String("log-level", os.Getenv("MLPIPE_LOG_LEVEL"), "log level: debug, info, warn or error")
	)
	flag.Parse()
	log.SetupLogger(*logLevel)

	cfg := stage.TrainConfig{}
	if *configPath != "" {
		loaded, err := stage.LoadConfig(*configPath)
		if err != nil {
			slog.Error("could not load run configuration", log.ErrAttr(err))
			os.Exit(1)
		}
		cfg = loaded.Train
	}
	if *dataDir != "" {
		cfg.TrainPath = filepath.Join(*dataDir, stage.TrainDirName, stage.TrainFileName)
		cfg.TestPath = filepath.Join(*dataDir, stage.TestDirName, stage.TestFileName)
		cfg.ScalerPath = filepath.Join(*dataDir, stage.ScalerDirName, stage.ScalerFileName)
	}
	if *modelDir != "" {
		cfg.ModelDir = *modelDir
	}
	if *label != "" {
		cfg.Label = *label
	}
	if *estimators != 0 {
		cfg.NEstimators = *estimators
	}
	if *minLeaf != 0 {
		cfg.MinSamplesLeaf = *minLeaf
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *report {
		cfg.Report = true
	}

	res, err := stage.Train(cfg)
	if err != nil {
		slog.Error("training failed", log.ErrAttr(err))
		os.Exit(1)
	}
	fmt.Printf("test accuracy %.4f; wrote %s and %s\n", res.Accuracy, res.ModelPath, res.PreprocPath)
	if res.ReportPath != "" {
		fmt.Printf("report: %s\n", res.ReportPath)
	}
}
