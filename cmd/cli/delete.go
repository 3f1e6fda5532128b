package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <recording-id>",
	Short: "Delete a recording and its fingerprints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := http.NewRequest("DELETE", serverURL+"/recordings/"+args[0], nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("server error: status %d", resp.StatusCode)
		}

		fmt.Printf("deleted recording %s\n", args[0])
		return nil
	},
}
