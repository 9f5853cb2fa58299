package concrete

import (
	"io"
	"math/rand"
	"os"
	"testing"

	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/compute/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	_ "github.com/gomlx/gomlx/backends/default"
)

func init() {
	if _, found := os.LookupEnv(backends.ConfigEnvVar); !found {
		// For testing, use the portable pure-Go backend.
		if err := os.Setenv(backends.ConfigEnvVar, "go"); err != nil {
			panic(err)
		}
	}
}

func TestSplit(t *testing.T) {
	data := Generate(DefaultSeed, 1000)
	trainData, testData := data.Split(0.2, rand.New(rand.NewSource(17)))
	require.Equal(t, 800, trainData.NumSamples())
	require.Equal(t, 200, testData.NumSamples())

	// Same rng seed gives the same partition.
	trainData2, testData2 := data.Split(0.2, rand.New(rand.NewSource(17)))
	assert.Equal(t, trainData.Strength, trainData2.Strength)
	assert.Equal(t, testData.Strength, testData2.Strength)

	// Partition covers all samples.
	total := 0.0
	for _, s := range trainData.Strength {
		total += s
	}
	for _, s := range testData.Strength {
		total += s
	}
	original := 0.0
	for _, s := range data.Strength {
		original += s
	}
	assert.InDelta(t, original, total, 1e-6)
}

func TestSplitPanicsOnDegenerateFraction(t *testing.T) {
	data := Generate(DefaultSeed, 10)
	require.Panics(t, func() { data.Split(0.0, rand.New(rand.NewSource(1))) })
	require.Panics(t, func() { data.Split(1.0, rand.New(rand.NewSource(1))) })
}

func TestScalerStandardizes(t *testing.T) {
	data := Generate(DefaultSeed, 1000)
	scaler := FitScaler(data)
	require.Len(t, scaler.Mean, NumFeatures)
	require.Len(t, scaler.Stddev, NumFeatures)

	scaled := scaler.Transform(data.Features)
	for col := range NumFeatures {
		column := make([]float64, len(scaled))
		for ii, row := range scaled {
			column[ii] = float64(row[col])
		}
		mean, stddev := stat.MeanStdDev(column, nil)
		assert.InDelta(t, 0.0, mean, 1e-4, "column %s should have zero mean", FeatureNames[col])
		assert.InDelta(t, 1.0, stddev, 1e-2, "column %s should have unit stddev", FeatureNames[col])
	}
}

func TestScalerTransformOne(t *testing.T) {
	scaler := &Scaler{Mean: []float64{100}, Stddev: []float64{50}}
	scaled := scaler.TransformOne([]float64{150})
	assert.InDelta(t, 1.0, scaled[0], 1e-6)

	require.Panics(t, func() { scaler.TransformOne([]float64{1, 2}) })
}

func TestDatasets(t *testing.T) {
	backend := backends.MustNew()
	data := Generate(DefaultSeed, 500)
	trainData, testData := data.Split(0.2, rand.New(rand.NewSource(17)))
	scaler := FitScaler(trainData)

	trainDS, trainEvalDS, testEvalDS, err := Datasets(backend, trainData, testData, scaler, 32, 64)
	require.NoError(t, err)
	require.Equal(t, 400, trainDS.NumExamples())
	require.Equal(t, 400, trainEvalDS.NumExamples())
	require.Equal(t, 100, testEvalDS.NumExamples())

	// Training batches are full sized and carry matching labels.
	_, inputs, labels, err := trainDS.Yield()
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	require.Len(t, labels, 1)
	assert.Equal(t, []int{32, NumFeatures}, inputs[0].Shape().Dimensions)
	assert.Equal(t, []int{32, 1}, labels[0].Shape().Dimensions)
	assert.Equal(t, dtypes.Float32, inputs[0].DType())
	assert.Equal(t, dtypes.Float32, labels[0].DType())

	// The test eval dataset yields each example exactly once.
	seen := 0
	for {
		_, _, labels, err := testEvalDS.Yield()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		seen += labels[0].Shape().Dimensions[0]
	}
	assert.Equal(t, 100, seen)
}
