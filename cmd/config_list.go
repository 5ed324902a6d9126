package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available config profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := config.ListConfigs()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No configs. Run `noveld config init` first.")
			return nil
		}

		for _, c := range list {
			if c.Active {
				fmt.Printf(" * %s\n", c.Label)
			} else {
				fmt.Printf("   %s\n", c.Label)
			}
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
}
