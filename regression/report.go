package regression

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

var summaryStyle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	Padding(0, 2)

// SampleTable renders up to maxRows of predicted vs actual values, with the
// residual, as a bordered terminal table.
func SampleTable(predicted, actual []float64, maxRows int) string {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "Predicted (MPa)", "Actual (MPa)", "Residual")
	numRows := min(maxRows, len(predicted), len(actual))
	for ii := range numRows {
		table.Row(
			fmt.Sprintf("%d", ii),
			fmt.Sprintf("%.2f", predicted[ii]),
			fmt.Sprintf("%.2f", actual[ii]),
			fmt.Sprintf("%+.2f", predicted[ii]-actual[ii]))
	}
	return table.String()
}

// Report prints the R² of the predictions and a small sample of predicted vs
// actual rows for the given dataset name.
func Report(dsName string, predicted, actual []float64, sampleRows int) {
	fmt.Println(summaryStyle.Render(
		fmt.Sprintf("%s: R² = %.4f over %d examples", dsName, RSquared(predicted, actual), len(actual))))
	if sampleRows > 0 {
		fmt.Println(SampleTable(predicted, actual, sampleRows))
	}
}
