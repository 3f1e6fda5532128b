package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fingerprint store statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := http.NewRequest("GET", serverURL+"/stats", nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		result, err := doRequest(req)
		if err != nil {
			return err
		}

		printResult(result)
		return nil
	},
}
