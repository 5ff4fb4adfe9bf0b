package commands

import (
	"fmt"
	"os"

	"infinite-craft/lib/infinitecraft"
	"infinite-craft/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	resetDiscoveries *string
	resetMakeFile    *bool
)

func init() {
	resetDiscoveries = resetCmd.Flags().String("discoveries", "", "Path of the discoveries file, overrides craft.json5.")
	resetMakeFile = resetCmd.Flags().Bool("make-file", false, "Create the discoveries file when it does not exist yet.")
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset [--discoveries <path>] [--make-file]",
	Short: "Resets the discoveries file to the four starting elements.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		path := cfg.Discoveries
		if *resetDiscoveries != "" {
			path = *resetDiscoveries
		}
		if path == "" {
			path = infinitecraft.DefaultDiscoveriesPath
		}

		if !*resetMakeFile {
			_, err := os.Stat(path)
			if err != nil {
				serviceutil.Fatal("discoveries file not found, pass --make-file to create it", err)
			}
		}

		store, err := infinitecraft.OpenStore(infinitecraft.StoreOptions{
			Path:  path,
			Reset: true,
		})
		if err != nil {
			serviceutil.Fatal("failed to reset discovery store", err)
		}
		fmt.Printf("reset %s to %d starting elements\n", store.Path(), store.Len())
	},
}
