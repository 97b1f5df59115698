// Package dataset handles the on-disk tabular format shared by the stages:
// CSV tables with a header row, float feature columns, and one label column.
package dataset

import (
	"encoding/csv"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlpipe/pkg/errors"
)

// Table is an in-memory tabular dataset: a feature matrix plus one label
// column, with column names preserved from the CSV header.
type Table struct {
	// FeatureNames are the header names of the feature columns, in order.
	FeatureNames []string

	// LabelName is the header name of the label column.
	LabelName string

	// X is the n_samples x n_features feature matrix.
	X *mat.Dense

	// Y is the n_samples x 1 label column.
	Y *mat.Dense
}

// NumSamples returns the number of rows in the table.
func (t *Table) NumSamples() int {
	r, _ := t.X.Dims()
	return r
}

// NumFeatures returns the number of feature columns.
func (t *Table) NumFeatures() int {
	_, c := t.X.Dims()
	return c
}

// Labels returns the label column as an int slice.
func (t *Table) Labels() []int {
	r, _ := t.Y.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = int(t.Y.At(i, 0))
	}
	return out
}

// Load reads a CSV table from path. The column named label becomes Y; every
// other column must parse as float64 and becomes a feature column.
//
// Missing files and missing label columns are fatal for the calling stage;
// there is no retry or partial recovery.
func Load(path, label string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewArtifactError("dataset.Load", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewArtifactError("dataset.Load", path, err)
	}
	if len(records) < 2 {
		return nil, errors.NewModelError("dataset.Load", "table has no data rows", errors.ErrEmptyData)
	}

	header := records[0]
	labelIdx := -1
	for i, name := range header {
		if name == label {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return nil, errors.NewColumnError("dataset.Load", label, header)
	}

	featureNames := make([]string, 0, len(header)-1)
	for i, name := range header {
		if i != labelIdx {
			featureNames = append(featureNames, name)
		}
	}

	rows := records[1:]
	n := len(rows)
	p := len(header) - 1

	X := mat.NewDense(n, p, nil)
	Y := mat.NewDense(n, 1, nil)

	for i, rec := range rows {
		if len(rec) != len(header) {
			return nil, errors.NewDimensionError("dataset.Load", len(header), len(rec), 1)
		}
		fj := 0
		for j, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "dataset.Load: row %d column %q", i+1, header[j])
			}
			if j == labelIdx {
				Y.Set(i, 0, v)
			} else {
				X.Set(i, fj, v)
				fj++
			}
		}
	}

	return &Table{
		FeatureNames: featureNames,
		LabelName:    label,
		X:            X,
		Y:            Y,
	}, nil
}

// Save writes the table to path as CSV, feature columns first and the label
// column last, matching the layout the training stage expects to read back.
func (t *Table) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewArtifactError("dataset.Save", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := append(append([]string{}, t.FeatureNames...), t.LabelName)
	if err := writer.Write(header); err != nil {
		return errors.NewArtifactError("dataset.Save", path, err)
	}

	n, p := t.X.Dims()
	rec := make([]string, p+1)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			rec[j] = strconv.FormatFloat(t.X.At(i, j), 'g', -1, 64)
		}
		rec[p] = strconv.FormatFloat(t.Y.At(i, 0), 'g', -1, 64)
		if err := writer.Write(rec); err != nil {
			return errors.NewArtifactError("dataset.Save", path, err)
		}
	}

	if err := writer.Error(); err != nil {
		return errors.NewArtifactError("dataset.Save", path, err)
	}
	return nil
}

// WithMatrix returns a copy of the table with X replaced. The replacement
// must have the same shape as the original feature matrix.
func (t *Table) WithMatrix(X mat.Matrix) (*Table, error) {
	r, c := X.Dims()
	or, oc := t.X.Dims()
	if r != or {
		return nil, errors.NewDimensionError("dataset.WithMatrix", or, r, 0)
	}
	if c != oc {
		return nil, errors.NewDimensionError("dataset.WithMatrix", oc, c, 1)
	}

	dense := mat.NewDense(r, c, nil)
	dense.Copy(X)
	return &Table{
		FeatureNames: t.FeatureNames,
		LabelName:    t.LabelName,
		X:            dense,
		Y:            mat.DenseCopyOf(t.Y),
	}, nil
}
