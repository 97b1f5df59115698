// Package stage implements the two independently runnable batch stages —
// preprocessing and training — and the artifact contract between them:
// the preprocessing stage writes transformed train/test tables plus a
// serialized transform, and the training stage consumes them and emits a
// model directory holding the complete composite inference unit.
package stage

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/mlpipe/pkg/errors"
)

// Scaler type names accepted by the preprocessing stage.
const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

// Default artifact names inside the stage output directories.
const (
	TrainDirName   = "train"
	TestDirName    = "test"
	TrainFileName  = "train.csv"
	TestFileName   = "test.csv"
	ScalerDirName  = "pipeline"
	ScalerFileName = "scaler.gob"
)

// PreprocessConfig configures the preprocessing stage.
type PreprocessConfig struct {
	// InputPath is the raw CSV table.
	InputPath string `yaml:"input_path"`

	// OutputDir receives train/, test/ and pipeline/ subdirectories.
	OutputDir string `yaml:"output_dir"`

	// Label is the label column name (default "y").
	Label string `yaml:"label"`

	// Scaler selects the transform: "standard" (default) or "minmax".
	Scaler string `yaml:"scaler"`

	// TestSize is the test fraction in (0, 1) (default 0.25).
	TestSize float64 `yaml:"test_size"`

	// Seed fixes the split (default 42).
	Seed int64 `yaml:"seed"`
}

// TrainConfig configures the training stage.
type TrainConfig struct {
	// TrainPath and TestPath are the transformed tables from preprocessing.
	TrainPath string `yaml:"train_path"`
	TestPath  string `yaml:"test_path"`

	// ScalerPath is the transform artifact from preprocessing.
	ScalerPath string `yaml:"scaler_path"`

	// ModelDir receives model.gob, preproc.gob and the training report.
	ModelDir string `yaml:"model_dir"`

	// Label is the label column name (default "y").
	Label string `yaml:"label"`

	// NEstimators is the forest size (default 100).
	NEstimators int `yaml:"n_estimators"`

	// MinSamplesLeaf is the minimum samples per leaf (default 1).
	MinSamplesLeaf int `yaml:"min_samples_leaf"`

	// Seed fixes the forest (default 42).
	Seed int64 `yaml:"seed"`

	// Report controls whether the PNG training report is rendered.
	Report bool `yaml:"report"`
}

// Config is the optional YAML run configuration shared by the stage CLIs.
// Flags override anything set here.
type Config struct {
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Train      TrainConfig      `yaml:"train"`
	Monolithic MonolithicConfig `yaml:"monolithic"`
}

// LoadConfig reads a YAML run configuration from path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewArtifactError("stage.LoadConfig", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.NewArtifactError("stage.LoadConfig", path, err)
	}
	return cfg, nil
}

// withDefaults fills zero values with stage defaults.
func (c PreprocessConfig) withDefaults() PreprocessConfig {
	if c.Label == "" {
		c.Label = "y"
	}
	if c.Scaler == "" {
		c.Scaler = ScalerStandard
	}
	if c.TestSize == 0 {
		c.TestSize = 0.25
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

func (c PreprocessConfig) validate() error {
	if c.InputPath == "" {
		return errors.NewValueError("stage.Preprocess", "input_path is required")
	}
	if c.OutputDir == "" {
		return errors.NewValueError("stage.Preprocess", "output_dir is required")
	}
	if c.Scaler != ScalerStandard && c.Scaler != ScalerMinMax {
		return errors.Newf("stage.Preprocess: unknown scaler %q", c.Scaler)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return errors.NewValueError("stage.Preprocess", "test_size must be in (0, 1)")
	}
	return nil
}

func (c TrainConfig) withDefaults() TrainConfig {
	if c.Label == "" {
		c.Label = "y"
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

func (c TrainConfig) validate() error {
	if c.TrainPath == "" || c.TestPath == "" {
		return errors.NewValueError("stage.Train", "train_path and test_path are required")
	}
	if c.ScalerPath == "" {
		return errors.NewValueError("stage.Train", "scaler_path is required")
	}
	if c.ModelDir == "" {
		return errors.NewValueError("stage.Train", "model_dir is required")
	}
	if c.NEstimators < 1 {
		return errors.NewValueError("stage.Train", "n_estimators must be >= 1")
	}
	if c.MinSamplesLeaf < 1 {
		return errors.NewValueError("stage.Train", "min_samples_leaf must be >= 1")
	}
	return nil
}
