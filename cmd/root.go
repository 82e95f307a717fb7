package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "webopt",
	Short:         "webopt - responsive web image variants and savings reports",
	Long:          "webopt resizes a directory of source images into a width x format matrix of web-optimized variants, records every output in a JSON report, and summarizes the best variant per image as CSV.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
