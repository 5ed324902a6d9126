package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/sites"
	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the registered site plugins",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range sites.All() {
			fmt.Println(" -", s.Name())
		}
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
