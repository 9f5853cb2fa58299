// MLP regression on synthetic concrete data: trains a feed-forward network
// mapping six mix-design features to compressive strength, reports test
// metrics and predicts the strength of one ad hoc mix.
package main

import (
	"flag"

	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/BigDevil82/dl-exercise-code/mlp"

	_ "github.com/gomlx/gomlx/backends/default"
)

var (
	flagCheckpoint = flag.String("checkpoint", "",
		"Directory to save and load checkpoints from. If left empty, no checkpoints are created.")
	flagEval      = flag.Bool("eval", true, "Whether to evaluate the model on the test split in the end.")
	flagVerbosity = flag.Int("verbosity", 1, "Level of verbosity, the higher the more verbose.")
)

func main() {
	ctx := mlp.CreateDefaultContext()
	settings := commandline.CreateContextSettingsFlag(ctx, "")
	klog.InitFlags(nil)
	flag.Parse()
	paramsSet := must.M1(commandline.ParseContextSettings(ctx, *settings))
	must.M(mlp.TrainModel(ctx, *flagCheckpoint, paramsSet, *flagEval, *flagVerbosity))
}
