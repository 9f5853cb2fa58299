// Package concrete generates the synthetic concrete mix dataset used by the
// regression exercises in this repository.
//
// Samples are drawn from a fixed formula, a linear combination of the mix
// design quantities plus a logarithmic curing-age term and Gaussian noise,
// so the exercises are fully reproducible and don't depend on downloading a
// real dataset. The trained models are expected to recover the formula
// approximately.
package concrete

import (
	"math"
	"math/rand"

	"github.com/gomlx/exceptions"
)

// Feature columns, in the order they are fed to the models.
const (
	Cement = iota // kg/m³
	Water
	CoarseAggregate
	FineAggregate
	Admixture // superplasticizer, kg/m³
	Age       // days since casting

	// NumFeatures for the full (MLP) exercise. The linear exercise uses the
	// cement column alone.
	NumFeatures
)

// FeatureNames indexed by the column constants above.
var FeatureNames = [NumFeatures]string{
	"cement", "water", "coarse_aggregate", "fine_aggregate", "admixture", "age",
}

// TargetName is the label column name, 28-day equivalent compressive strength in MPa.
const TargetName = "strength"

// DefaultSeed used by the demos when none is given.
const DefaultSeed = 42

// Coefficients of the synthetic strength formula. Strength grows with cement,
// aggregates, admixture and (logarithmically) curing age, and decreases with
// water content.
const (
	strengthBias  = -10.0
	cementCoef    = 0.105
	waterCoef     = -0.18
	coarseAggCoef = 0.012
	fineAggCoef   = 0.008
	admixtureCoef = 0.45
	ageLogCoef    = 9.5

	strengthNoiseStddev = 3.5
	minStrength         = 2.0
)

// Sampling ranges for the mix design quantities.
const (
	cementMin, cementMax       = 150.0, 500.0
	waterMean, waterStddev     = 185.0, 20.0
	coarseAggMin, coarseAggMax = 850.0, 1150.0
	fineAggMin, fineAggMax     = 600.0, 900.0
	admixtureMax               = 12.0
)

// curingAges a strength test is typically run at.
var curingAges = []float64{3, 7, 14, 28, 56, 90}

// Cement-only generator, used by the linear regression exercise.
const (
	cementOnlySlope       = 0.11
	cementOnlyBias        = 8.0
	cementOnlyNoiseStddev = 4.0
)

// RawData holds generated samples as plain Go slices, row major. It is the
// input to the gota data-frame view and to the dataset construction in this
// package.
type RawData struct {
	// Features is shaped [numSamples][numFeatures]. The full generator
	// produces NumFeatures columns, the cement-only generator a single one.
	Features [][]float64

	// Strength in MPa, one value per row of Features.
	Strength []float64
}

// NumSamples returns the number of generated rows.
func (d *RawData) NumSamples() int { return len(d.Strength) }

// NumFeatureColumns returns the width of the feature matrix.
func (d *RawData) NumFeatureColumns() int {
	if len(d.Features) == 0 {
		return 0
	}
	return len(d.Features[0])
}

// Column returns a copy of the col-th feature column.
func (d *RawData) Column(col int) []float64 {
	if col < 0 || col >= d.NumFeatureColumns() {
		exceptions.Panicf("concrete: column %d out of range, data has %d feature columns",
			col, d.NumFeatureColumns())
	}
	values := make([]float64, d.NumSamples())
	for ii, row := range d.Features {
		values[ii] = row[col]
	}
	return values
}

// StrengthFormula returns the noiseless strength for one mix. Exported so
// tests can verify the generator against it.
func StrengthFormula(cement, water, coarseAgg, fineAgg, admixture, age float64) float64 {
	strength := strengthBias +
		cementCoef*cement +
		waterCoef*water +
		coarseAggCoef*coarseAgg +
		fineAggCoef*fineAgg +
		admixtureCoef*admixture +
		ageLogCoef*math.Log1p(age)
	return math.Max(strength, minStrength)
}

// Generate creates numSamples synthetic mixes with all NumFeatures columns.
// The same seed always generates the same data.
func Generate(seed int64, numSamples int) *RawData {
	if numSamples <= 0 {
		exceptions.Panicf("concrete: numSamples must be > 0, got %d", numSamples)
	}
	rng := rand.New(rand.NewSource(seed))
	data := &RawData{
		Features: make([][]float64, numSamples),
		Strength: make([]float64, numSamples),
	}
	for ii := range numSamples {
		row := make([]float64, NumFeatures)
		row[Cement] = uniform(rng, cementMin, cementMax)
		row[Water] = waterMean + waterStddev*rng.NormFloat64()
		row[CoarseAggregate] = uniform(rng, coarseAggMin, coarseAggMax)
		row[FineAggregate] = uniform(rng, fineAggMin, fineAggMax)
		row[Admixture] = uniform(rng, 0, admixtureMax)
		row[Age] = curingAges[rng.Intn(len(curingAges))]
		data.Features[ii] = row

		strength := StrengthFormula(
			row[Cement], row[Water], row[CoarseAggregate],
			row[FineAggregate], row[Admixture], row[Age])
		strength += strengthNoiseStddev * rng.NormFloat64()
		data.Strength[ii] = math.Max(strength, minStrength)
	}
	return data
}

// GenerateCementOnly creates numSamples single-feature samples relating cement
// content to strength, for the linear regression exercise.
func GenerateCementOnly(seed int64, numSamples int) *RawData {
	if numSamples <= 0 {
		exceptions.Panicf("concrete: numSamples must be > 0, got %d", numSamples)
	}
	rng := rand.New(rand.NewSource(seed))
	data := &RawData{
		Features: make([][]float64, numSamples),
		Strength: make([]float64, numSamples),
	}
	for ii := range numSamples {
		cement := uniform(rng, cementMin, cementMax)
		data.Features[ii] = []float64{cement}
		strength := cementOnlySlope*cement + cementOnlyBias +
			cementOnlyNoiseStddev*rng.NormFloat64()
		data.Strength[ii] = math.Max(strength, minStrength)
	}
	return data
}

// CementOnlyLine returns the slope and intercept the linear exercise is
// expected to approximately recover.
func CementOnlyLine() (slope, intercept float64) {
	return cementOnlySlope, cementOnlyBias
}

func uniform(rng *rand.Rand, low, high float64) float64 {
	return low + (high-low)*rng.Float64()
}
