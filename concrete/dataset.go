package concrete

import (
	"math/rand"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/pkg/ml/datasets"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Split partitions the samples into train and test subsets. The partition is
// shuffled with rng, so the same rng seed always produces the same split.
// testFraction must be in (0, 1).
func (d *RawData) Split(testFraction float64, rng *rand.Rand) (train, test *RawData) {
	numTest := int(float64(d.NumSamples()) * testFraction)
	if numTest <= 0 || numTest >= d.NumSamples() {
		// Degenerate splits are always a configuration mistake in the demos.
		exceptions.Panicf("concrete: test fraction %g leaves %d test samples out of %d",
			testFraction, numTest, d.NumSamples())
	}
	perm := rng.Perm(d.NumSamples())
	test = d.subset(perm[:numTest])
	train = d.subset(perm[numTest:])
	return
}

func (d *RawData) subset(indices []int) *RawData {
	sub := &RawData{
		Features: make([][]float64, len(indices)),
		Strength: make([]float64, len(indices)),
	}
	for ii, idx := range indices {
		sub.Features[ii] = d.Features[idx]
		sub.Strength[ii] = d.Strength[idx]
	}
	return sub
}

// Scaler standardizes features to zero mean and unit variance. It must be
// fitted on the training split only, and then applied to both splits and to
// any ad hoc sample fed to a trained model.
type Scaler struct {
	Mean, Stddev []float64
}

// FitScaler computes per-column mean and standard deviation.
func FitScaler(data *RawData) *Scaler {
	numCols := data.NumFeatureColumns()
	scaler := &Scaler{
		Mean:   make([]float64, numCols),
		Stddev: make([]float64, numCols),
	}
	for col := range numCols {
		mean, stddev := stat.MeanStdDev(data.Column(col), nil)
		if stddev == 0 {
			// Constant features would divide by zero when transforming.
			stddev = 1
		}
		scaler.Mean[col] = mean
		scaler.Stddev[col] = stddev
	}
	return scaler
}

// Transform standardizes the feature matrix and converts it to the float32
// values fed to the models.
func (s *Scaler) Transform(features [][]float64) [][]float32 {
	scaled := make([][]float32, len(features))
	for ii, row := range features {
		scaled[ii] = s.TransformOne(row)
	}
	return scaled
}

// TransformOne standardizes a single sample.
func (s *Scaler) TransformOne(sample []float64) []float32 {
	if len(sample) != len(s.Mean) {
		exceptions.Panicf("concrete: sample has %d features, scaler was fitted on %d",
			len(sample), len(s.Mean))
	}
	scaled := make([]float32, len(sample))
	for col, value := range sample {
		scaled[col] = float32((value - s.Mean[col]) / s.Stddev[col])
	}
	return scaled
}

// Datasets wraps the train/test splits into GoMLX in-memory datasets:
//
//   - trainDS: shuffled, batched and infinite, for the training loop;
//   - trainEvalDS and testEvalDS: sequential single-epoch datasets for
//     evaluation.
//
// Inputs are standardized with scaler; the strength labels are left in MPa,
// shaped [batchSize, 1].
func Datasets(backend backends.Backend, trainData, testData *RawData, scaler *Scaler,
	batchSize, evalBatchSize int) (trainDS, trainEvalDS, testEvalDS *datasets.InMemoryDataset, err error) {
	if evalBatchSize <= 0 {
		evalBatchSize = batchSize
	}

	baseTrain, err := datasets.InMemoryFromData(backend, "train",
		[]any{scaler.Transform(trainData.Features)},
		[]any{labelColumn(trainData.Strength)})
	if err != nil {
		return nil, nil, nil, errors.WithMessage(err, "building train dataset")
	}
	baseTest, err := datasets.InMemoryFromData(backend, "test",
		[]any{scaler.Transform(testData.Features)},
		[]any{labelColumn(testData.Strength)})
	if err != nil {
		return nil, nil, nil, errors.WithMessage(err, "building test dataset")
	}

	trainDS = baseTrain.Copy().BatchSize(batchSize, true).Shuffle().Infinite(true)
	trainEvalDS = baseTrain.BatchSize(evalBatchSize, false).SetName("train-eval")
	testEvalDS = baseTest.BatchSize(evalBatchSize, false).SetName("test-eval")
	return
}

func labelColumn(strength []float64) [][]float32 {
	labels := make([][]float32, len(strength))
	for ii, value := range strength {
		labels[ii] = []float32{float32(value)}
	}
	return labels
}
