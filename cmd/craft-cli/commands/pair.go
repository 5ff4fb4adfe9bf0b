package commands

import (
	"fmt"

	"infinite-craft/lib/infinitecraft"
	"infinite-craft/lib/serviceutil"

	"github.com/spf13/cobra"
)

var pairNoStore *bool

func init() {
	pairNoStore = pairCmd.Flags().Bool("no-store", false, "Do not record the result in the discoveries file.")
	rootCmd.AddCommand(pairCmd)
}

var pairCmd = &cobra.Command{
	Use:   "pair <first> <second> [--no-store]",
	Short: "Combines two elements through the API.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		ctx := cmd.Context()

		client, cleanup := openClient(ctx, cfg)
		defer cleanup()

		first := infinitecraft.Element{Name: args[0]}
		second := infinitecraft.Element{Name: args[1]}

		var result infinitecraft.Element
		var err error
		if *pairNoStore {
			result, err = client.PairEphemeral(ctx, first, second)
		} else {
			result, err = client.Pair(ctx, first, second)
		}
		if err != nil {
			serviceutil.Fatal("pairing failed", err)
		}

		if result.IsEmpty() {
			fmt.Printf("%s + %s cannot be combined\n", args[0], args[1])
			return
		}
		if result.IsFirstDiscovery {
			fmt.Printf("%s (first discovery!)\n", result)
			return
		}
		fmt.Println(result)
	},
}
