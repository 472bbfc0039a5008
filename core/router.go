package core

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/encodeous/lsr/perf"
	"github.com/encodeous/lsr/state"
)

// RouteTable is the outcome of one route computation cycle.
type RouteTable struct {
	RoutingResult
	Forward    ForwardTable
	ComputedAt time.Time
}

// LinkStateRouter owns the topology store and periodically recomputes the forwarding table from it.
type LinkStateRouter struct {
	*state.State
	routes atomic.Pointer[RouteTable]
	// Output receives the route table dump after every computation, nil disables it
	Output io.Writer
	// OnRoutes is called after every computation
	OnRoutes func(rt *RouteTable)
}

func (r *LinkStateRouter) Log(event RouterEvent, desc string, args ...any) {
	msg := fmt.Sprintf("%s %s", event.String(), desc)
	if event.IsWarning() {
		r.Env.Log.Warn(msg, args...)
	} else {
		r.Env.Log.Debug(msg, args...)
	}
}

// Routes returns the most recently computed route table, or nil if the topology has never been complete.
func (r *LinkStateRouter) Routes() *RouteTable {
	return r.routes.Load()
}

func (r *LinkStateRouter) Init(s *state.State) error {
	s.Log.Debug("init router")
	r.State = s
	for _, n := range s.Neighbours {
		if lbl := s.Labels.Of(n.Id); lbl != n.Label {
			s.Log.Warn("neighbour label does not match its id, using the assigned label", "id", n.Id, "configured", n.Label, "assigned", lbl)
		}
	}
	own := state.BuildOwnVector(s.Id, s.TotalNodes, s.Neighbours)
	s.Topology = state.NewTopologyStore(s.Id, own)
	s.Log.Debug("seeded topology", "vector", own)

	s.Log.Debug("schedule router tasks")
	s.ScheduleRepeatTask(r.recompute, state.RouteUpdateDelay)
	return nil
}

func (r *LinkStateRouter) Cleanup(s *state.State) error {
	return nil
}

func (r *LinkStateRouter) recompute(s *state.State) error {
	rt := r.ComputeRouteTable()
	if rt == nil {
		return nil
	}
	old := r.routes.Swap(rt)
	r.logRouteChanges(old, rt)
	if r.Output != nil {
		if err := PrintRouteTable(r.Output, s.Labels, rt); err != nil {
			s.Log.Error("failed to print route table", "err", err)
		}
	}
	if r.OnRoutes != nil {
		r.OnRoutes(rt)
	}
	return nil
}

// ComputeRouteTable runs one computation over a snapshot of the topology store.
// It returns nil if some origin has not been heard from yet.
func (r *LinkStateRouter) ComputeRouteTable() *RouteTable {
	snap := r.Topology.Snapshot()
	if len(snap) < r.TotalNodes {
		r.Log(RouteSkipped, "incomplete topology", "known", len(snap), "total", r.TotalNodes)
		return nil
	}
	start := time.Now()
	res := ComputeRoutes(r.Id, r.TotalNodes, r.Topology.OwnVector(), snap, r)
	rt := &RouteTable{
		RoutingResult: res,
		Forward:       BuildForwardTable(res, r.Labels, r),
		ComputedAt:    time.Now(),
	}
	perf.RouteComputeLatency.Add(float64(time.Since(start).Microseconds()))
	r.Log(RoutesComputed, "computed routes", "dist", res.Dist)
	return rt
}

func (r *LinkStateRouter) logRouteChanges(old, cur *RouteTable) {
	for _, e := range cur.Forward {
		var prev ForwardEntry
		ok := false
		if old != nil {
			prev, ok = old.Forward.Lookup(e.Dest)
		}
		if !ok || prev.Via != e.Via {
			r.Env.Log.Info("route changed", "dest", r.Labels.Of(e.Dest), "via", e.Label, "dist", cur.Dist[e.Dest])
		}
	}
}
