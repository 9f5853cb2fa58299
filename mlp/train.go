// Package mlp implements the second exercise: a multilayer perceptron mapping
// the six concrete mix features to compressive strength, on synthetic data
// from the concrete package.
package mlp

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/context/checkpoints"
	"github.com/gomlx/gomlx/pkg/ml/layers/activations"
	"github.com/gomlx/gomlx/pkg/ml/layers/fnn"
	"github.com/gomlx/gomlx/pkg/ml/layers/regularizers"
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

// CreateDefaultContext sets the hyperparameters for the MLP exercise. Any of
// them can be overridden from the command line with --set.
func CreateDefaultContext() *context.Context {
	ctx := context.New()
	ctx.ResetRNGState()
	ctx.SetParams(map[string]any{
		"train_steps":     3000,
		"num_checkpoints": 3,

		// Synthetic data.
		"data_seed":     concrete.DefaultSeed,
		"num_samples":   2000,
		"test_fraction": 0.2,

		// batch_size for training; eval can use larger batches.
		"batch_size":      64,
		"eval_batch_size": 256,

		// Plot loss curves with Plotly when running inside a GoNB notebook.
		plotly.ParamPlots: false,

		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: 1e-3,
		activations.ParamActivation:  "relu",
		regularizers.ParamL2:         0.0,

		// The network: two hidden layers of 64 nodes.
		fnn.ParamNumHiddenLayers: 2,
		fnn.ParamNumHiddenNodes:  64,
		fnn.ParamResidual:        false,
		fnn.ParamDropoutRate:     0.0,
	})
	return ctx
}

// SampleMix is the ad hoc mix whose strength the demo predicts after
// training: cement, water, coarse and fine aggregate, admixture (kg/m³) and
// age (days).
var SampleMix = []float64{350, 180, 1000, 750, 6, 28}

// TrainModel generates the data, trains the MLP for the configured number of
// steps and reports evaluation metrics and one ad hoc prediction.
func TrainModel(ctx *context.Context, checkpointPath string, paramsSet []string,
	evaluateOnEnd bool, verbosity int) error {
	backend := backends.MustNew()
	if verbosity >= 1 {
		fmt.Printf("Backend %q:\t%s\n", backend.Name(), backend.Description())
	}

	// Synthetic data: generate, preview, split and scale.
	seed := int64(context.GetParamOr(ctx, "data_seed", concrete.DefaultSeed))
	numSamples := context.GetParamOr(ctx, "num_samples", 2000)
	testFraction := context.GetParamOr(ctx, "test_fraction", 0.2)
	data := concrete.Generate(seed, numSamples)
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

	// Held-out evaluation.
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

	// Single ad hoc prediction.
	predictedStrength, err := predictor.PredictOne(scaler.TransformOne(SampleMix))
	if err != nil {
		return err
	}
	fmt.Printf("Predicted strength for mix %v: %.2f MPa\n", SampleMix, predictedStrength)
	return nil
}
