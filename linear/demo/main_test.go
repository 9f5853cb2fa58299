package main

import (
	"os"
	"testing"

	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"

	"github.com/BigDevil82/dl-exercise-code/linear"
)

var flagSettings *string

func init() {
	ctx := linear.CreateDefaultContext()
	flagSettings = commandline.CreateContextSettingsFlag(ctx, "")
	if _, found := os.LookupEnv(backends.ConfigEnvVar); !found {
		// For testing, use the portable pure-Go backend.
		must.M(os.Setenv(backends.ConfigEnvVar, "go"))
	}
}

// TestMainFunc trains the linear model for a few steps on a small sample, no
// checkpoints.
func TestMainFunc(t *testing.T) {
	ctx := linear.CreateDefaultContext()
	ctx.SetParam("train_steps", 20)
	ctx.SetParam("num_samples", 200)
	paramsSet := must.M1(commandline.ParseContextSettings(ctx, *flagSettings))
	err := linear.TrainModel(ctx, "", paramsSet, true, 0)
	require.NoError(t, err, "failed to train the linear model for 20 steps")
}
