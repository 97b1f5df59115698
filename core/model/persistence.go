package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/mlpipe/pkg/errors"
)

// SaveModel serializes an estimator to a file with encoding/gob.
//
// The estimator must embed BaseEstimator (or otherwise export its learned
// parameters) so the fitted state survives the round trip.
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.NewArtifactError("model.SaveModel", filename, err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(model); err != nil {
		return errors.NewArtifactError("model.SaveModel", filename, err)
	}

	return nil
}

// LoadModel deserializes an estimator from a file written by SaveModel.
// model must be a pointer to the concrete estimator type.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.NewArtifactError("model.LoadModel", filename, err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(model); err != nil {
		return errors.NewArtifactError("model.LoadModel", filename, err)
	}

	return nil
}

// SaveModelToWriter serializes an estimator to a Writer.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader deserializes an estimator from a Reader.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
