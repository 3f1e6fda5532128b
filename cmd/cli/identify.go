package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <file>",
	Short: "Identify an audio clip against the fingerprint store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := postFile(serverURL+"/identify", args[0], nil)
		if err != nil {
			return err
		}

		if output != "json" {
			fmt.Printf("matched recording %v (confidence %.2f)\n", result["recording_id"], result["confidence"])
			return nil
		}
		printResult(result)
		return nil
	},
}
