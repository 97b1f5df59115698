// Package report renders a small PNG summary of a training run: held-out
// accuracy in the title and a bar per class with its predicted count.
package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/mlpipe/pkg/errors"
)

// FileName is the report artifact name inside a model directory.
const FileName = "report.png"

// SaveTrainingReport writes a bar chart of predicted class counts to path.
// classes and counts must be parallel slices.
func SaveTrainingReport(path string, accuracy float64, classes []int, counts []int) error {
	if len(classes) != len(counts) {
		return errors.NewValueError("report.SaveTrainingReport",
			fmt.Sprintf("got %d classes but %d counts", len(classes), len(counts)))
	}
	if len(classes) == 0 {
		return errors.NewValueError("report.SaveTrainingReport", "no classes to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("test accuracy: %.4f", accuracy)
	p.X.Label.Text = "class"
	p.Y.Label.Text = "predicted count"

	values := make(plotter.Values, len(counts))
	labels := make([]string, len(classes))
	for i := range counts {
		values[i] = float64(counts[i])
		labels[i] = fmt.Sprintf("%d", classes[i])
	}

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return errors.Wrap(err, "report.SaveTrainingReport: bar chart")
	}
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.NewArtifactError("report.SaveTrainingReport", path, err)
	}
	return nil
}
