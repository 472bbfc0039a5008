package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/encodeous/lsr/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	newNetNodes    int
	newNetBasePort uint16
	newNetYaml     bool
)

func parseRouterRef(labels *state.Labels, ref string) (state.NodeId, error) {
	if id, ok := labels.Id(ref); ok {
		return id, nil
	}
	id, err := strconv.Atoi(ref)
	if err != nil {
		return state.NoNode, fmt.Errorf("unknown router %q", ref)
	}
	return state.NodeId(id), state.NodeIdValidator(state.NodeId(id), labels.Len())
}

// parseLink reads an undirected link written as A-B:cost, where routers are given by label or id.
func parseLink(labels *state.Labels, link string) (state.NodeId, state.NodeId, int, error) {
	ends, costStr, ok := strings.Cut(link, ":")
	if !ok {
		return 0, 0, 0, fmt.Errorf("link %q is missing a cost", link)
	}
	from, to, ok := strings.Cut(ends, "-")
	if !ok {
		return 0, 0, 0, fmt.Errorf("link %q must be written as A-B:cost", link)
	}
	a, err := parseRouterRef(labels, from)
	if err != nil {
		return 0, 0, 0, err
	}
	b, err := parseRouterRef(labels, to)
	if err != nil {
		return 0, 0, 0, err
	}
	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("link %q has an invalid cost", link)
	}
	return a, b, cost, nil
}

// buildNetwork returns the topology file of every router, router i listening on basePort + i.
func buildNetwork(total int, basePort uint16, links []string) ([]state.TopologyCfg, error) {
	if total < 1 {
		return nil, fmt.Errorf("%w: node count must be positive, got %d", state.ErrConfig, total)
	}
	if int(basePort)+total-1 > 65535 {
		return nil, fmt.Errorf("%w: base port %d leaves no room for %d routers", state.ErrConfig, basePort, total)
	}
	labels := state.NewLabels(total)
	cfgs := make([]state.TopologyCfg, total)
	for i := range cfgs {
		cfgs[i].TotalNodes = total
	}
	for _, link := range links {
		a, b, cost, err := parseLink(labels, link)
		if err != nil {
			return nil, err
		}
		for _, p := range []state.Pair[state.NodeId, state.NodeId]{{V1: a, V2: b}, {V1: b, V2: a}} {
			cfgs[p.V1].Neighbours = append(cfgs[p.V1].Neighbours, state.NeighbourCfg{
				Label: labels.Of(p.V2),
				Id:    p.V2,
				Cost:  cost,
				Port:  basePort + uint16(p.V2),
			})
		}
	}
	for i := range cfgs {
		if err := state.ConfigValidator(&cfgs[i], state.NodeId(i)); err != nil {
			return nil, fmt.Errorf("router %s: %w", labels.Of(state.NodeId(i)), err)
		}
	}
	return cfgs, nil
}

var newNetCmd = &cobra.Command{
	Use:   "new-net <dir> <link>...",
	Short: "Writes the topology file of every router in a network",
	Long: `Writes one topology file per router into dir. Links are undirected and written as A-B:cost, for example:

    lsr new-net ./ring -n 4 A-B:1 B-C:1 C-D:1 D-A:1

Router i listens on base-port + i.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgs, err := buildNetwork(newNetNodes, newNetBasePort, args[1:])
		if err != nil {
			return err
		}
		dir := args[0]
		err = os.MkdirAll(dir, 0700)
		if err != nil {
			return err
		}
		labels := state.NewLabels(newNetNodes)
		for i, cfg := range cfgs {
			name := labels.Of(state.NodeId(i))
			var data []byte
			if newNetYaml {
				name += ".yaml"
				data, err = yaml.Marshal(&cfg)
				if err != nil {
					return err
				}
			} else {
				name += ".txt"
				sb := &strings.Builder{}
				if err := cfg.WriteText(sb); err != nil {
					return err
				}
				data = []byte(sb.String())
			}
			p := filepath.Join(dir, name)
			err = os.WriteFile(p, data, 0600)
			if err != nil {
				return err
			}
			fmt.Printf("lsr run %d %d %s\n", i, newNetBasePort+uint16(i), p)
		}
		return nil
	},
	GroupID: "cfg",
}

func init() {
	rootCmd.AddCommand(newNetCmd)
	newNetCmd.Flags().IntVarP(&newNetNodes, "nodes", "n", 0, "number of routers in the network")
	newNetCmd.Flags().Uint16VarP(&newNetBasePort, "base-port", "p", 5000, "port of router A")
	newNetCmd.Flags().BoolVar(&newNetYaml, "yaml", false, "write yaml instead of the text format")
	_ = newNetCmd.MarkFlagRequired("nodes")
}
