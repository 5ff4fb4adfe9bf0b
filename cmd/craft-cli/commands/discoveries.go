package commands

import (
	"os"

	"infinite-craft/lib/infinitecraft"
	"infinite-craft/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var discoveriesSearch *string

func init() {
	discoveriesSearch = discoveriesCmd.Flags().String("search", "", "Fuzzy-search discoveries by name.")
	rootCmd.AddCommand(discoveriesCmd)
}

var discoveriesCmd = &cobra.Command{
	Use:   "discoveries [--search <query>]",
	Short: "Lists the contents of the discoveries file.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		store, err := infinitecraft.OpenStore(infinitecraft.StoreOptions{
			Path: cfg.Discoveries,
		})
		if err != nil {
			serviceutil.Fatal("failed to open discovery store", err)
		}

		var elements []infinitecraft.Element
		if *discoveriesSearch != "" {
			elements = store.Search(*discoveriesSearch, 10)
		} else {
			elements, err = store.Discoveries(infinitecraft.DiscoveriesOptions{})
			if err != nil {
				serviceutil.Fatal("failed to read discoveries", err)
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Emoji", "Name", "First Discovery"})
		for _, e := range elements {
			t.AppendRow(table.Row{e.Emoji, e.Name, e.IsFirstDiscovery})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
