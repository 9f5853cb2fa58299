package concrete

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/gomlx/exceptions"
)

// DataFrame returns the samples as a gota data frame, one column per feature
// plus the strength column. Used by the demos for a quick preview and summary
// of the generated data before training.
func (d *RawData) DataFrame() dataframe.DataFrame {
	numCols := d.NumFeatureColumns()
	if numCols == 0 || numCols > NumFeatures {
		exceptions.Panicf("concrete: cannot build data frame from %d feature columns", numCols)
	}
	columns := make([]series.Series, 0, numCols+1)
	for col := range numCols {
		columns = append(columns, series.New(d.Column(col), series.Float, FeatureNames[col]))
	}
	columns = append(columns, series.New(d.Strength, series.Float, TargetName))
	return dataframe.New(columns...)
}

// Preview returns the first n rows, pandas' head() equivalent.
func (d *RawData) Preview(n int) dataframe.DataFrame {
	if n > d.NumSamples() {
		n = d.NumSamples()
	}
	indices := make([]int, n)
	for ii := range indices {
		indices[ii] = ii
	}
	return d.DataFrame().Subset(indices)
}

// Describe returns per-column summary statistics (mean, stddev, min,
// quartiles, max) of the generated data.
func (d *RawData) Describe() dataframe.DataFrame {
	return d.DataFrame().Describe()
}
