package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/encodeous/lsr/core"
	"github.com/encodeous/lsr/state"
	"github.com/spf13/cobra"
)

var (
	runHost      = state.DefaultHost
	runLogPath   string
	runAdvertise = state.AdvertiseDelay
	runRecompute = state.RouteUpdateDelay
	runDedup     bool
	runSeqno     bool
	runCtlPath   string
)

// parseRouterArgs turns <routerid> <routerport> <configfile> into the router's configuration.
func parseRouterArgs(args []string) (state.LocalCfg, *state.TopologyCfg, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return state.LocalCfg{}, nil, fmt.Errorf("router id %q is not an integer", args[0])
	}
	port, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return state.LocalCfg{}, nil, fmt.Errorf("router port %q is not valid", args[1])
	}
	topo, err := state.ReadConfig(args[2])
	if err != nil {
		return state.LocalCfg{}, nil, fmt.Errorf("error loading config: %w", err)
	}
	lcfg := state.LocalCfg{
		Id:      state.NodeId(id),
		Port:    uint16(port),
		Host:    runHost,
		LogPath: runLogPath,
		Dedup:   runDedup,
		Seqno:   runSeqno || runDedup,
		CtlPath: runCtlPath,
	}
	err = state.LocalConfigValidator(&lcfg, topo)
	if err != nil {
		return state.LocalCfg{}, nil, err
	}
	return lcfg, topo, nil
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <routerid> <routerport> <configfile>",
	Short: "Run a router",
	Long:  `This will run a router on the current host. It advertises its links every second and prints its forwarding table every ten seconds.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		lcfg, topo, err := parseRouterArgs(args)
		if err != nil {
			return err
		}
		if runAdvertise <= 0 || runRecompute <= 0 {
			return fmt.Errorf("intervals must be positive")
		}
		state.AdvertiseDelay = runAdvertise
		state.RouteUpdateDelay = runRecompute
		state.DedupTTL = 3 * runAdvertise

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}
		return core.Start(lcfg, *topo, level)
	},
	GroupID: "lsr",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().StringVar(&runHost, "host", runHost, "Host every router listens on")
	runCmd.Flags().StringVarP(&runLogPath, "log-path", "l", "", "Also write logs to this file")
	runCmd.Flags().DurationVarP(&runAdvertise, "advertise", "a", runAdvertise, "Interval between link-state advertisements")
	runCmd.Flags().DurationVarP(&runRecompute, "recompute", "r", runRecompute, "Interval between route computations")
	runCmd.Flags().BoolVar(&runDedup, "dedup", false, "Only relay an advertisement when it carries more hops than the last relayed copy, implies --seqno")
	runCmd.Flags().BoolVar(&runSeqno, "seqno", false, "Stamp advertisements with sequence numbers and ignore older ones")
	runCmd.Flags().StringVar(&runCtlPath, "ctl", "", "Unix socket to answer inspect requests on")
	runCmd.Flags().StringVar(&core.DebugAddr, "debug-addr", "", "Serve /debug/metrics and /debug/vars on this address")
}
