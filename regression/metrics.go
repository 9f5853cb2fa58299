// Package regression holds the pieces shared by the two training exercises:
// evaluation metrics for regression models, an inference helper for a trained
// context, and the terminal report printed after training.
package regression

import (
	"fmt"
	"math"

	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/train/metrics"
)

// MAEGraph computes the mean absolute error of a batch. It implements
// metrics.BaseMetricGraph.
func MAEGraph(_ *context.Context, labels, predictions []*Node) *Node {
	return ReduceAllMean(Abs(Sub(predictions[0], labels[0])))
}

// MSEGraph computes the mean squared error of a batch. It implements
// metrics.BaseMetricGraph.
func MSEGraph(_ *context.Context, labels, predictions []*Node) *Node {
	return ReduceAllMean(Square(Sub(predictions[0], labels[0])))
}

// NewMeanAbsoluteError returns a metric that accumulates the mean absolute
// error over the evaluated batches, reported in the label's units (MPa here).
func NewMeanAbsoluteError(name, shortName string) *metrics.MeanMetric {
	return metrics.NewMeanMetric(name, shortName, "mae", MAEGraph, unitsPPrint)
}

// NewRootMeanSquaredError returns a metric that accumulates the mean squared
// error over the evaluated batches and presents its square root, so what is
// printed is the RMSE in the label's units.
func NewRootMeanSquaredError(name, shortName string) *metrics.MeanMetric {
	return metrics.NewMeanMetric(name, shortName, "rmse", MSEGraph, rmsePPrint)
}

func unitsPPrint(value *tensors.Tensor) string {
	return fmt.Sprintf("%.3f", shapes.ConvertTo[float64](value.Value()))
}

func rmsePPrint(value *tensors.Tensor) string {
	return fmt.Sprintf("%.3f", math.Sqrt(shapes.ConvertTo[float64](value.Value())))
}
