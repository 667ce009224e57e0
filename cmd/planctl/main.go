// Command planctl generates a meal plan locally and prints it as JSON
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	logLevelFlag string
	rootCmd      = &cobra.Command{
		Use:           "planctl",
		Short:         "Generate daily meal plans from a nutritional profile",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level written to stderr")

	rootCmd.AddCommand(newGenerateCmd(), newTargetsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
