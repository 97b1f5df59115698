// Command preprocess runs the preprocessing stage: it fits a feature scaler
// on a raw CSV table, splits it into train/test partitions and writes the
// transformed tables plus the serialized scaler under the output directory.
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
		inputDir   = flag.String("input-dir", os.Getenv("MLPIPE_INPUT_DIR"), "directory holding the raw CSV table")
		file       = flag.String("file", "raw.csv", "raw CSV file name inside the input directory")
		outputDir  = flag.String("output", os.Getenv("MLPIPE_OUTPUT_DIR"), "output directory for train/, test/ and pipeline/")
		label      = flag.String("label", "", "label column name (default y)")
		scaler     = flag.String("scaler", "", "feature scaler: standard or minmax (default standard)")
		testSize   = flag.Float64("test-size", 0, "test fraction in (0, 1) (default 0.25)")
		seed       = flag.Int64("seed", 0, "random seed for the split (default 42)")
		logLevel   = flag.String("log-level", os.Getenv("MLPIPE_LOG_LEVEL"), "log level: debug, info, warn or error")
	)
	flag.Parse()
	log.SetupLogger(*logLevel)

	cfg := stage.PreprocessConfig{}
	if *configPath != "" {
		loaded, err := stage.LoadConfig(*configPath)
		if err != nil {
			slog.Error("could not load run configuration", log.ErrAttr(err))
			os.Exit(1)
		}
		cfg = loaded.Preprocess
	}
	if *inputDir != "" {
		cfg.InputPath = filepath.Join(*inputDir, *file)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *label != "" {
		cfg.Label = *label
	}
	if *scaler != "" {
		cfg.Scaler = *scaler
	}
	if *testSize != 0 {
		cfg.TestSize = *testSize
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	res, err := stage.Preprocess(cfg)
	if err != nil {
		slog.Error("preprocessing failed", log.ErrAttr(err))
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d rows), %s (%d rows), %s\n",
		res.TrainPath, res.TrainRows, res.TestPath, res.TestRows, res.ScalerPath)
}
