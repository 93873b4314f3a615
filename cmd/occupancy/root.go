package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"occupancy/config"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "occupancy",
	Short: "Household occupancy classifier",
	Long: `occupancy predicts whether a household is occupied from its energy use,
dwelling attributes and location, using a pre-trained classifier.

Predictions below the confidence threshold are reported as inconclusive.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "occupancy %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml when present)")
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the --config file, falling back to ./config.yaml and then
// to built-in defaults. Environment overrides apply in every case.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}
