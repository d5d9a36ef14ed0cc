package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/aptdex/internal/version"
)

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "aptdex",
		Short:   "Seoul apartment catalog",
		Long:    `Reconciles apartment complex metadata with transaction prices and serves a faceted catalog`,
		Version: version.String(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: config/$ENV.yaml)")

	rootCmd.AddCommand(createServeCmd(a))
	rootCmd.AddCommand(createReconcileCmd(a))
	rootCmd.AddCommand(createFetchCmd(a))

	err := rootCmd.Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
