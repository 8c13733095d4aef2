// Package cli wires the cobra command tree for the marketbridge binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marketbridge/marketbridge/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "marketbridge",
	Short: "Commerce to marketing platform event bridge",
	Long: `marketbridge forwards commerce platform change notifications to a
marketing platform as metric events and profile upserts.

Run the push endpoint with "marketbridge serve" or backfill historical
orders with "marketbridge sync orders".`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
}
