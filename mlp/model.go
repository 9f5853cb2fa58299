package mlp

import (
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/layers/fnn"

	"github.com/BigDevil82/dl-exercise-code/concrete"
)

// ModelGraph returns the predicted strength for a batch of standardized mix
// features: an FNN with the hidden layers, activation and regularization
// configured through the context hyperparameters.
func ModelGraph(ctx *context.Context, _ any, inputs []*Node) []*Node {
	x := inputs[0]
	x.AssertDims(-1, concrete.NumFeatures)
	predictions := fnn.New(ctx.In("model"), x, 1).Done()
	return []*Node{predictions}
}
