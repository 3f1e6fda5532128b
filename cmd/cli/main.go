package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zfogg/echomatch/internal/config"
)

var (
	serverURL string
	output    string = "text" // "text" or "json"

	httpClient = &http.Client{Timeout: 30 * time.Second}
)

var rootCmd = &cobra.Command{
	Use:   "echomatch",
	Short: "echomatch CLI - ingest and identify audio fingerprints",
	Long: `echomatch CLI provides command-line access to an echomatch server:
ingesting recordings, identifying audio clips, and inspecting store stats.`,
}

func init() {
	cfg, err := config.LoadCLIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", cfg.ServerURL, "echomatch server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
