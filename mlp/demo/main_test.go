package main

import (
	"os"
	"testing"

	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"

	"github.com/BigDevil82/dl-exercise-code/mlp"
)

var flagSettings *string

func init() {
	ctx := mlp.CreateDefaultContext()
	flagSettings = commandline.CreateContextSettingsFlag(ctx, "")
	if _, found := os.LookupEnv(backends.ConfigEnvVar); !found {
		// For testing, use the portable pure-Go backend.
		must.M(os.Setenv(backends.ConfigEnvVar, "go"))
	}
}

// TestMainFunc trains the MLP for a few steps on a small sample, no
// checkpoints.
func TestMainFunc(t *testing.T) {
	ctx := mlp.CreateDefaultContext()
	ctx.SetParam("train_steps", 20)
	ctx.SetParam("num_samples", 200)
	paramsSet := must.M1(commandline.ParseContextSettings(ctx, *flagSettings))
	err := mlp.TrainModel(ctx, "", paramsSet, true, 0)
	require.NoError(t, err, "failed to train the MLP for 20 steps")
}
