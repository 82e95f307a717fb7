package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"webopt/internal/config"
	"webopt/internal/summary"
	"webopt/internal/tui"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [report] [summary]",
	Short: "Write a CSV of the best variant per image from a report",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := config.DefaultReportPath()
		output := config.DefaultSummaryPath()
		if len(args) > 0 {
			input = args[0]
		}
		if len(args) > 1 {
			output = args[1]
		}

		s, err := summary.Run(input, output)
		if err != nil {
			return err
		}

		total := s.Total
		rows := []tui.SummaryRow{
			{Label: "Images", Value: fmt.Sprintf("%d", len(s.Rows))},
			{Label: "Original bytes", Value: fmt.Sprintf("%d", total.OriginalSize)},
			{Label: "Best variant bytes", Value: fmt.Sprintf("%d", total.BestSize)},
			{Label: "Savings", Value: fmt.Sprintf("%d (%s%%)", total.SavingsBytes, total.SavingsPercent), Warn: total.SavingsBytes < 0},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
		fmt.Fprintf(os.Stdout, "Wrote %s\n", summaryPathStyle.Render(output))
		return nil
	},
}

var summaryPathStyle = lipgloss.NewStyle().Foreground(tui.ColorAccent)

func init() {
	rootCmd.AddCommand(summaryCmd)
}
