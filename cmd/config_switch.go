package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Make another config profile the active one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := ""
		if len(args) == 1 {
			label = args[0]
		} else {
			var err error
			if label, err = pickConfig(); err != nil {
				return err
			}
		}

		if active, _ := config.CurrentLabel(); active == label {
			fmt.Println("Already active:", label)
			return nil
		}

		if err := config.SwitchConfig(label); err != nil {
			return err
		}

		fmt.Println("Switched to:", label)
		return nil
	},
}

// pickConfig prompts for a profile, with the cursor starting on the one
// currently active.
func pickConfig() (string, error) {
	list, err := config.ListConfigs()
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", fmt.Errorf("no configs found, run `noveld config init` first")
	}

	labels := make([]string, len(list))
	cursor := 0
	for i, c := range list {
		labels[i] = c.Label
		if c.Active {
			labels[i] += " (active)"
			cursor = i
		}
	}

	prompt := promptui.Select{
		Label:     "Switch to config",
		Items:     labels,
		CursorPos: cursor,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled")
	}

	return list[idx].Label, nil
}

func init() {
	configCmd.AddCommand(configSwitchCmd)
}
