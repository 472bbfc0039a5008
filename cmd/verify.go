package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/encodeous/lsr/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	verifyId   int
	verifyYaml bool
	verifyText bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify <configfile>",
	Short: "Checks a topology file and prints the link vector it produces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := state.ReadConfig(args[0])
		if err != nil {
			return err
		}
		err = state.ConfigValidator(topo, state.NodeId(verifyId))
		if err != nil {
			return err
		}
		labels := state.NewLabels(topo.TotalNodes)
		for _, n := range topo.Neighbours {
			if lbl := labels.Of(n.Id); lbl != n.Label {
				fmt.Fprintf(os.Stderr, "warning: neighbour %d is labelled %s, but will be shown as %s\n", n.Id, n.Label, lbl)
			}
		}
		switch {
		case verifyYaml:
			out, err := yaml.Marshal(topo)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
		case verifyText:
			return topo.WriteText(os.Stdout)
		default:
			vec := state.BuildOwnVector(state.NodeId(verifyId), topo.TotalNodes, topo.Neighbours)
			fmt.Printf("Router %s (%d) of %d nodes\n", labels.Of(state.NodeId(verifyId)), verifyId, topo.TotalNodes)
			for i, c := range vec {
				cost := strconv.Itoa(c)
				if c == state.INF {
					cost = "INF"
				}
				fmt.Printf("\t%s (%d): %s\n", labels.Of(state.NodeId(i)), i, cost)
			}
		}
		return nil
	},
	GroupID: "cfg",
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().IntVarP(&verifyId, "id", "i", 0, "id of the router the file belongs to")
	verifyCmd.Flags().BoolVar(&verifyYaml, "yaml", false, "print the topology as yaml")
	verifyCmd.Flags().BoolVar(&verifyText, "text", false, "print the topology in the text format")
	verifyCmd.MarkFlagsMutuallyExclusive("yaml", "text")
}
