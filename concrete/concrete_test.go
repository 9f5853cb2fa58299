package concrete

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(DefaultSeed, 100)
	b := Generate(DefaultSeed, 100)
	require.Equal(t, 100, a.NumSamples())
	require.Equal(t, NumFeatures, a.NumFeatureColumns())
	require.Equal(t, a.Features, b.Features)
	require.Equal(t, a.Strength, b.Strength)

	c := Generate(DefaultSeed+1, 100)
	assert.NotEqual(t, a.Strength, c.Strength, "different seeds must generate different data")
}

func TestStrengthFormula(t *testing.T) {
	// Hand-computed value for a reference mix at 28 days.
	got := StrengthFormula(350, 180, 1000, 750, 6, 28)
	assert.InDelta(t, 47.039, got, 0.01)

	// More cement means stronger, more water means weaker.
	assert.Greater(t, StrengthFormula(400, 180, 1000, 750, 6, 28), got)
	assert.Less(t, StrengthFormula(350, 220, 1000, 750, 6, 28), got)

	// Longer curing means stronger.
	assert.Greater(t, StrengthFormula(350, 180, 1000, 750, 6, 90), got)

	// Degenerate mixes clamp at the floor instead of going negative.
	assert.Equal(t, 2.0, StrengthFormula(0, 500, 0, 0, 0, 0))
}

func TestGeneratedStrengthIsNonNegative(t *testing.T) {
	data := Generate(DefaultSeed, 5000)
	for _, strength := range data.Strength {
		require.GreaterOrEqual(t, strength, 2.0)
	}
}

func TestGenerateCementOnlyRecoversLine(t *testing.T) {
	data := GenerateCementOnly(DefaultSeed, 2000)
	require.Equal(t, 1, data.NumFeatureColumns())

	// An OLS fit on the generated data should recover the generating line.
	alpha, beta := stat.LinearRegression(data.Column(0), data.Strength, nil, false)
	slope, intercept := CementOnlyLine()
	assert.InDelta(t, slope, beta, 0.005)
	assert.InDelta(t, intercept, alpha, 2.0)
}

func TestColumn(t *testing.T) {
	data := Generate(DefaultSeed, 10)
	cement := data.Column(Cement)
	require.Len(t, cement, 10)
	for ii, row := range data.Features {
		assert.Equal(t, row[Cement], cement[ii])
	}
}

func TestDataFrame(t *testing.T) {
	data := Generate(DefaultSeed, 50)
	df := data.DataFrame()
	require.Equal(t, 50, df.Nrow())
	require.Equal(t, NumFeatures+1, df.Ncol())
	assert.Equal(t,
		[]string{"cement", "water", "coarse_aggregate", "fine_aggregate", "admixture", "age", "strength"},
		df.Names())

	preview := data.Preview(5)
	assert.Equal(t, 5, preview.Nrow())
}
