package state

import (
	"context"
	"log/slog"
	"net/netip"

	"golang.org/x/sync/errgroup"
)

type NyModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State is shared by every task of a router. Apart from Topology, it is read-only once Init has completed.
type State struct {
	*Env
	Modules  map[string]NyModule
	Topology *TopologyStore
	tasks    *errgroup.Group
}

func NewState(env *Env) *State {
	g, ctx := errgroup.WithContext(env.Context)
	env.Context = ctx
	return &State{
		Env:     env,
		Modules: make(map[string]NyModule),
		tasks:   g,
	}
}

// Env can be read from any Goroutine
type Env struct {
	LocalCfg
	TopologyCfg
	Labels  *Labels
	HostIP  netip.Addr
	Context context.Context
	Cancel  context.CancelCauseFunc
	Log     *slog.Logger
	// AuxConfig carries in-process collaborators, such as a virtual network for tests
	AuxConfig map[string]any
}

func (e *Env) Label() string {
	return e.Labels.Of(e.Id)
}
