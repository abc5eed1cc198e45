package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kenkohealth/kenko/internal/client"
)

var predictCmd = &cobra.Command{
	Use:   "predict SYMPTOM1 SYMPTOM2 SYMPTOM3 SYMPTOM4 SYMPTOM5",
	Short: "Ask a running server for a prediction",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		disease, err := client.New(server, timeout).Predict(cmd.Context(), args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), disease)
		return nil
	},
}

func init() {
	predictCmd.Flags().String("server", "http://localhost:8000", "Base URL of the kenko HTTP server")
	predictCmd.Flags().Duration("timeout", 10*time.Second, "Request timeout")
}
