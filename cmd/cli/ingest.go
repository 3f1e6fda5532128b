package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	ingestTitle    string
	ingestArtist   string
	ingestAlbum    string
	ingestDuration float64
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a recording into the fingerprint store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := map[string]string{
			"title":  ingestTitle,
			"artist": ingestArtist,
			"album":  ingestAlbum,
		}
		if ingestDuration > 0 {
			fields["duration"] = strconv.FormatFloat(ingestDuration, 'f', -1, 64)
		}

		result, err := postFile(serverURL+"/recordings", args[0], fields)
		if err != nil {
			return err
		}

		if output != "json" {
			fmt.Printf("queued recording %v for ingestion\n", result["recording_id"])
			return nil
		}
		printResult(result)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "Recording title (required)")
	ingestCmd.Flags().StringVar(&ingestArtist, "artist", "", "Recording artist (required)")
	ingestCmd.Flags().StringVar(&ingestAlbum, "album", "", "Recording album")
	ingestCmd.Flags().Float64Var(&ingestDuration, "duration", 0, "Recording duration in seconds")
	ingestCmd.MarkFlagRequired("title")
	ingestCmd.MarkFlagRequired("artist")
}
