package commands

import (
	"fmt"

	"infinite-craft/lib/serviceutil"
	"infinite-craft/lib/telemetry"
	"infinite-craft/services/mockcraft"

	"github.com/spf13/cobra"
)

var (
	mockHost      *string
	mockPort      *int
	mockRandomize *bool
)

func init() {
	mockHost = mockCmd.Flags().String("host", "127.0.0.1", "Address to bind the mock server to.")
	mockPort = mockCmd.Flags().Int("port", 8080, "Port to bind the mock server to.")
	mockRandomize = mockCmd.Flags().Bool("randomize", false, "Answer with random elements instead of the fixed placeholder.")
	rootCmd.AddCommand(mockCmd)
}

var mockCmd = &cobra.Command{
	Use:   "mock [--host <addr>] [--port <port>] [--randomize]",
	Short: "Runs a mock pairing API for offline use.",
	Run: func(cmd *cobra.Command, args []string) {
		telemetry.InstrumentPerfStats(serviceutil.SignalContext())

		handler := mockcraft.NewHandler(mockcraft.Options{
			Randomize: *mockRandomize,
		})
		serviceutil.StartHttpServer(
			fmt.Sprintf("%s:%d", *mockHost, *mockPort),
			handler,
		)
	},
}
