// Package linear implements the first exercise: fitting a straight line from
// cement content to compressive strength with a single dense layer, on
// synthetic data from the concrete package.
package linear

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/backends"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/context/checkpoints"
	"github.com/gomlx/gomlx/pkg/ml/layers"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gomlx/pkg/ml/train/losses"
	"github.com/gomlx/gomlx/pkg/ml/train/metrics"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/gomlx/gomlx/ui/gonb/plotly"
	"github.com/pkg/errors"

	"github.com/BigDevil82/dl-exercise-code/concrete"
	"github.com/BigDevil82/dl-exercise-code/regression"
)

// ParamsExcludedFromLoading are hyperparameters that may be overridden on
// every run even when restarting from a checkpoint.
var ParamsExcludedFromLoading = []string{"train_steps", "num_checkpoints", "plots"}

// CreateDefaultContext sets the hyperparameters for the linear exercise. Any
// of them can be overridden from the command line with --set.
func CreateDefaultContext() *context.Context {
	ctx := context.New()
	ctx.ResetRNGState()
	ctx.SetParams(map[string]any{
		"train_steps":     2000,
		"num_checkpoints": 3,

		// Synthetic data.
		"data_seed":     concrete.DefaultSeed,
		"num_samples":   1000,
		"test_fraction": 0.2,

		// Ad hoc prediction printed after training, in kg/m³ of cement.
		"predict_cement": 320.0,

		// batch_size for training; eval can use larger batches.
		"batch_size":      100,
		"eval_batch_size": 200,

		// Plot loss curves with Plotly when running inside a GoNB notebook.
		plotly.ParamPlots: false,

		// Plain SGD is enough to fit a line on standardized inputs.
		optimizers.ParamOptimizer:    "sgd",
		optimizers.ParamLearningRate: 0.1,
	})
	return ctx
}

// ModelGraph returns the predicted strength for the cement inputs: a single
// dense layer, so just a learned slope and intercept on the standardized
// feature.
func ModelGraph(ctx *context.Context, _ any, inputs []*Node) []*Node {
	predictions := layers.Dense(ctx.In("model"), inputs[0], true, 1)
	return []*Node{predictions}
}

// Line returns the learned slope and intercept converted back to physical
// units (MPa per kg/m³ of cement), undoing the feature standardization.
func Line(ctx *context.Context, scaler *concrete.Scaler) (slope, intercept float64, err error) {
	weightsVar := ctx.InspectVariable("/model/dense", "weights")
	biasVar := ctx.InspectVariable("/model/dense", "biases")
	if weightsVar == nil || biasVar == nil {
		return 0, 0, errors.New("model variables not found, was the model trained?")
	}
	weightsT, err := weightsVar.Value()
	if err != nil {
		return 0, 0, err
	}
	biasT, err := biasVar.Value()
	if err != nil {
		return 0, 0, err
	}
	weight := float64(weightsT.Value().([][]float32)[0][0])
	bias := float64(biasT.Value().([]float32)[0])

	// The model sees x' = (x-mean)/stddev, so in raw units:
	// strength = (w/stddev)·x + (b - w·mean/stddev).
	slope = weight / scaler.Stddev[0]
	intercept = bias - weight*scaler.Mean[0]/scaler.Stddev[0]
	return slope, intercept, nil
}

// TrainModel generates the data, trains the linear model for the configured
// number of steps and reports evaluation metrics, the fitted line and one ad
// hoc prediction.
func TrainModel(ctx *context.Context, checkpointPath string, paramsSet []string,
	evaluateOnEnd bool, verbosity int) error {
	backend := backends.MustNew()
	if verbosity >= 1 {
		fmt.Printf("Backend %q:\t%s\n", backend.Name(), backend.Description())
	}

	// Synthetic data: generate, preview, split and scale.
	seed := int64(context.GetParamOr(ctx, "data_seed", concrete.DefaultSeed))
	numSamples := context.GetParamOr(ctx, "num_samples", 1000)
	testFraction := context.GetParamOr(ctx, "test_fraction", 0.2)
	data := concrete.GenerateCementOnly(seed, numSamples)
	if verbosity >= 2 {
		fmt.Println(data.Preview(5))
		fmt.Println(data.Describe())
	}
	trainData, testData := data.Split(testFraction, rand.New(rand.NewSource(seed+1)))
	scaler := concrete.FitScaler(trainData)

	batchSize := context.GetParamOr(ctx, "batch_size", 0)
	if batchSize <= 0 {
		return errors.Errorf("batch_size must be > 0, got %d", batchSize)
	}
	evalBatchSize := context.GetParamOr(ctx, "eval_batch_size", 0)
	trainDS, trainEvalDS, testEvalDS, err := concrete.Datasets(
		backend, trainData, testData, scaler, batchSize, evalBatchSize)
	if err != nil {
		return err
	}
	if verbosity >= 1 {
		fmt.Printf("Training data: %d examples, %d test examples (%s in memory)\n",
			trainDS.NumExamples(), testEvalDS.NumExamples(),
			humanize.Bytes(uint64(trainDS.ByteSize()+testEvalDS.ByteSize())))
	}

	// Trainer orchestrates the training step: model, loss, optimizer, metrics.
	maeMetric := regression.NewMeanAbsoluteError("Mean Absolute Error", "#mae")
	rmseMetric := regression.NewRootMeanSquaredError("Root Mean Squared Error", "#rmse")
	trainer := train.NewTrainer(backend, ctx, ModelGraph,
		losses.MeanSquaredError,
		optimizers.FromContext(ctx),
		nil, // trainMetrics: the loop already reports the moving average loss.
		[]metrics.Interface{maeMetric, rmseMetric})

	loop := train.NewLoop(trainer)
	if verbosity >= 0 {
		commandline.AttachProgressBar(loop)
	}

	// Optional checkpointing, off unless a directory is given.
	var checkpoint *checkpoints.Handler
	if checkpointPath != "" {
		numCheckpointsToKeep := context.GetParamOr(ctx, "num_checkpoints", 3)
		checkpoint, err = checkpoints.Build(ctx).
			Dir(checkpointPath).
			Keep(numCheckpointsToKeep).
			ExcludeParams(append(paramsSet, ParamsExcludedFromLoading...)...).
			Done()
		if err != nil {
			return errors.WithMessage(err, "creating checkpoint handler")
		}
		fmt.Printf("Checkpoint: %q\n", checkpoint.Dir())
		train.PeriodicCallback(loop, time.Minute, true, "saving checkpoint", 100,
			func(loop *train.Loop, metrics []*tensors.Tensor) error {
				return checkpoint.Save()
			})
	}

	// Plot loss curves when running in a GoNB notebook.
	if context.GetParamOr(ctx, plotly.ParamPlots, false) {
		_ = plotly.New().
			WithCheckpoint(checkpoint).
			Dynamic().
			WithDatasets(trainEvalDS, testEvalDS).
			ScheduleExponential(loop, 100, 1.2)
	}

	// Fixed number of steps, no early stopping.
	numTrainSteps := context.GetParamOr(ctx, "train_steps", 0)
	globalStep := int(optimizers.GetGlobalStep(ctx))
	if globalStep > 0 {
		trainer.SetContext(ctx.Reuse())
	}
	if globalStep < numTrainSteps {
		if _, err = loop.RunSteps(trainDS, numTrainSteps-globalStep); err != nil {
			return errors.WithMessage(err, "training loop")
		}
		if verbosity >= 1 {
			fmt.Printf("\t[Step %d] median train step: %d microseconds\n",
				loop.LoopStep, loop.MedianTrainStepDuration().Microseconds())
		}
		if checkpoint != nil {
			if err = checkpoint.Save(); err != nil {
				return errors.WithMessage(err, "saving final checkpoint")
			}
		}
	} else {
		fmt.Printf("\t - target train_steps=%d already reached. To train further, set a number additional "+
			"to current global step.\n", numTrainSteps)
	}

	if !evaluateOnEnd {
		return nil
	}

	// Held-out evaluation and the fitted line in physical units.
	fmt.Println()
	if err = commandline.ReportEval(trainer, trainEvalDS, testEvalDS); err != nil {
		return errors.WithMessage(err, "evaluating datasets")
	}
	predictor := regression.NewPredictor(backend, ctx, ModelGraph)
	predicted, actual, err := predictor.EvalPredictions(testEvalDS)
	if err != nil {
		return err
	}
	regression.Report("test", predicted, actual, 10)

	slope, intercept, err := Line(ctx, scaler)
	if err != nil {
		return err
	}
	fmt.Printf("Fitted line: strength ≈ %.4f·cement %+.3f (MPa)\n", slope, intercept)

	// Single ad hoc prediction.
	predictCement := context.GetParamOr(ctx, "predict_cement", 320.0)
	predictedStrength, err := predictor.PredictOne(scaler.TransformOne([]float64{predictCement}))
	if err != nil {
		return err
	}
	fmt.Printf("Predicted strength for %.0f kg/m³ of cement: %.2f MPa\n",
		predictCement, predictedStrength)
	return nil
}
