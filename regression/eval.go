package regression

import (
	"io"

	"github.com/gomlx/gomlx/backends"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Predictor runs inference with a trained model context. It reuses the
// variables learned during training, so it must only be created after the
// training loop finished.
type Predictor struct {
	exec *context.Exec
}

// NewPredictor wraps modelFn and the trained variables held by ctx into an
// inference executor.
func NewPredictor(backend backends.Backend, ctx *context.Context, modelFn train.ModelFn) *Predictor {
	return &Predictor{
		exec: context.MustNewExec(backend, ctx.Reuse(), func(ctx *context.Context, inputs *Node) *Node {
			return modelFn(ctx, nil, []*Node{inputs})[0]
		}),
	}
}

// Predict returns one predicted value per input row.
func (p *Predictor) Predict(inputs [][]float32) ([]float64, error) {
	output, err := p.exec.Exec1(inputs)
	if err != nil {
		return nil, errors.WithMessage(err, "running inference")
	}
	rows := output.Value().([][]float32)
	predicted := make([]float64, len(rows))
	for ii, row := range rows {
		predicted[ii] = float64(row[0])
	}
	return predicted, nil
}

// PredictOne returns the prediction for a single sample.
func (p *Predictor) PredictOne(sample []float32) (float64, error) {
	predicted, err := p.Predict([][]float32{sample})
	if err != nil {
		return 0, err
	}
	return predicted[0], nil
}

// EvalPredictions runs the predictor over every batch of ds and returns the
// flattened predicted and actual values, in yield order. ds is reset first,
// and must not be infinite.
func (p *Predictor) EvalPredictions(ds train.Dataset) (predicted, actual []float64, err error) {
	ds.Reset()
	for {
		_, inputs, labels, yieldErr := ds.Yield()
		if yieldErr == io.EOF {
			return predicted, actual, nil
		}
		if yieldErr != nil {
			return nil, nil, errors.WithMessagef(yieldErr, "reading dataset %q", ds.Name())
		}
		batchPredicted, predictErr := p.Predict(inputs[0].Value().([][]float32))
		if predictErr != nil {
			return nil, nil, predictErr
		}
		predicted = append(predicted, batchPredicted...)
		for _, row := range labels[0].Value().([][]float32) {
			actual = append(actual, float64(row[0]))
		}
	}
}

// RSquared returns the coefficient of determination of the predictions, the
// fraction of the label variance explained by the model. 1 is a perfect fit,
// 0 no better than predicting the mean.
func RSquared(predicted, actual []float64) float64 {
	return stat.RSquaredFrom(predicted, actual, nil)
}
