package preprocessing

import (
	"encoding/gob"
	"os"

	"github.com/YuminosukeSato/mlpipe/core/model"
	"github.com/YuminosukeSato/mlpipe/pkg/errors"
)

func init() {
	gob.Register(&StandardScaler{})
	gob.Register(&MinMaxScaler{})
}

// transformArtifact wraps the fitted transform behind the Transformer
// interface so consumers can reload the artifact without knowing which
// scaler type the preprocessing stage was configured with.
type transformArtifact struct {
	Transformer model.Transformer
}

// SaveTransformer persists a fitted transform as the transform artifact.
func SaveTransformer(path string, t model.Transformer) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewArtifactError("preprocessing.SaveTransformer", path, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(&transformArtifact{Transformer: t}); err != nil {
		return errors.NewArtifactError("preprocessing.SaveTransformer", path, err)
	}
	return nil
}

// LoadTransformer reads a transform artifact written by SaveTransformer.
func LoadTransformer(path string) (model.Transformer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewArtifactError("preprocessing.LoadTransformer", path, err)
	}
	defer file.Close()

	var artifact transformArtifact
	if err := gob.NewDecoder(file).Decode(&artifact); err != nil {
		return nil, errors.NewArtifactError("preprocessing.LoadTransformer", path, err)
	}
	if artifact.Transformer == nil {
		return nil, errors.NewArtifactError("preprocessing.LoadTransformer", path, errors.New("artifact holds no transformer"))
	}
	return artifact.Transformer, nil
}
