package cmd

import (
	"fmt"

	"github.com/epget-cli/epget/icon"
	"github.com/epget-cli/epget/inventory"
	"github.com/epget-cli/epget/util"
	"github.com/epget-cli/epget/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolP("dry-run", "n", false, "List leftover files without removing them")
	cleanCmd.Flags().BoolP("cache", "C", false, "Also clear the cache directory")
}

// cleanCmd removes temporary files left behind by interrupted downloads.
var cleanCmd = &cobra.Command{
	Use:   "clean <download-dir>",
	Short: "Remove leftover temporary files of interrupted downloads",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := args[0]

		if lo.Must(cmd.Flags().GetBool("dry-run")) {
			stale, err := inventory.Stale(dir)
			handleErr(err)
			for _, path := range stale {
				fmt.Println(path)
			}
			return
		}

		e := util.PrintErasable(fmt.Sprintf("%s Cleaning %s...", icon.Get(icon.Progress), dir))
		removed, err := inventory.Clean(dir)
		e()
		handleErr(err)
		fmt.Printf("%s Removed %s\n", icon.Get(icon.Success), util.Quantify(removed, "leftover file", "leftover files"))

		if lo.Must(cmd.Flags().GetBool("cache")) {
			handleErr(util.Delete(where.Cache()))
			fmt.Printf("%s Cache cleared\n", icon.Get(icon.Success))
		}
	},
}
