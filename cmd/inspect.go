package cmd

import (
	"fmt"

	"github.com/encodeous/lsr/core"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <socket>",
	Aliases: []string{"i"},
	Short:   "Inspects the link state database and routes of a running router",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := core.IPCGet(args[0])
		if err != nil {
			return err
		}
		fmt.Print(result)
		return nil
	},
	GroupID: "lsr",
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
