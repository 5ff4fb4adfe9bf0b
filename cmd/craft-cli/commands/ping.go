package commands

import (
	"fmt"

	"infinite-craft/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pingCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measures round-trip latency against the API.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		ctx := cmd.Context()

		client, cleanup := openClient(ctx, cfg)
		defer cleanup()

		latency, err := client.Ping(ctx)
		if err != nil {
			serviceutil.Fatal("ping failed", err)
		}
		fmt.Printf("pong: %s\n", latency)
	},
}
