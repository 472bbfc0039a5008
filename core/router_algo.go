package core

// The shortest path computation follows the link-state algorithm in
// Kurose & Ross, "Computer Networking: A Top-Down Approach", section 5.2.1:
// N' is the set of nodes whose least-cost path is definitively known,
// D(v) the current estimate of the cost to v and p(v) its predecessor.

import (
	"errors"
	"fmt"

	"github.com/encodeous/lsr/state"
)

type RouterEvent int

// trace events

const (
	LspReceived RouterEvent = iota
	LspRelayed
	LspSuppressed
	LspRejected
	RouteSkipped
	RoutesComputed
)

// warn events

const (
	InconsistentState RouterEvent = iota + 1000
	MalformedPacket
	SendFailed
)

func (e RouterEvent) String() string {
	switch e {
	case LspReceived:
		return "LSP_RECEIVED"
	case LspRelayed:
		return "LSP_RELAYED"
	case LspSuppressed:
		return "LSP_SUPPRESSED"
	case LspRejected:
		return "LSP_REJECTED"
	case RouteSkipped:
		return "ROUTE_SKIPPED"
	case RoutesComputed:
		return "ROUTES_COMPUTED"
	case InconsistentState:
		return "INCONSISTENT_STATE"
	case MalformedPacket:
		return "MALFORMED_PACKET"
	case SendFailed:
		return "SEND_FAILED"
	}
	return fmt.Sprintf("RouterEvent(%d)", int(e))
}

// IsWarning reports whether the event indicates something went wrong.
func (e RouterEvent) IsWarning() bool {
	return e >= InconsistentState
}

// Router is an interface that defines the underlying router operations
type Router interface {
	Log(event RouterEvent, desc string, args ...any)
}

// RoutingResult is the output of one shortest path run from Source.
type RoutingResult struct {
	Source state.NodeId
	Dist   []int
	// Prev holds the predecessor of every node on its least-cost path, or state.NoNode.
	Prev []state.NodeId
}

var errBrokenChain = errors.New("predecessor chain does not lead back to the source")

// ComputeRoutes runs Dijkstra from self over a complete topology snapshot.
// Ties are broken towards the smallest NodeId.
func ComputeRoutes(self state.NodeId, total int, own state.LinkVector, topo map[state.NodeId]state.LinkVector, r Router) RoutingResult {
	res := RoutingResult{
		Source: self,
		Dist:   make([]int, total),
		Prev:   make([]state.NodeId, total),
	}
	visited := make([]bool, total)

	// Initialization: N' = {u}, D(v) = c(u,v), p(v) = u for direct neighbours
	for v := range total {
		res.Dist[v] = cost(own, v)
		if state.NodeId(v) != self && res.Dist[v] != state.INF {
			res.Prev[v] = self
		} else {
			res.Prev[v] = state.NoNode
		}
	}
	res.Prev[self] = self
	visited[self] = true
	nVisited := 1

	for nVisited < total {
		// find w not in N' such that D(w) is a minimum
		w := state.NoNode
		minDist := state.INF + 1
		for v := range total {
			if !visited[v] && res.Dist[v] < minDist {
				minDist = res.Dist[v]
				w = state.NodeId(v)
			}
		}
		if w == state.NoNode || minDist >= state.INF {
			break // the rest of the network is unreachable
		}
		visited[w] = true
		nVisited++

		vec, ok := topo[w]
		if !ok {
			r.Log(InconsistentState, "no link vector for visited node", "node", w)
			continue
		}
		// update D(v) for each v adjacent to w and not in N': D(v) = min(D(v), D(w) + c(w,v))
		for v := range total {
			if visited[v] {
				continue
			}
			c := cost(vec, v)
			if c < 0 || c >= state.INF {
				continue
			}
			if alt := res.Dist[w] + c; alt < res.Dist[v] {
				res.Dist[v] = alt
				res.Prev[v] = w
			}
		}
	}
	return res
}

func cost(vec state.LinkVector, v int) int {
	if v >= len(vec) {
		return state.INF
	}
	return vec[v]
}

// NextHop walks the predecessor chain back from dest to find the neighbour of the source
// on the least-cost path. It returns state.NoNode when dest is unreachable.
func (res RoutingResult) NextHop(dest state.NodeId) (state.NodeId, error) {
	total := len(res.Prev)
	if dest < 0 || int(dest) >= total {
		return state.NoNode, fmt.Errorf("destination %d out of range", dest)
	}
	if res.Prev[dest] == state.NoNode {
		return state.NoNode, nil
	}
	cur := dest
	// a direct neighbour is its own next hop
	for steps := 0; res.Prev[cur] != res.Source; steps++ {
		if steps >= total {
			return state.NoNode, fmt.Errorf("%w: gave up after %d steps from %d", errBrokenChain, steps, dest)
		}
		cur = res.Prev[cur]
		if cur < 0 || int(cur) >= total {
			return state.NoNode, fmt.Errorf("%w: dead end at %d", errBrokenChain, dest)
		}
	}
	return cur, nil
}

// ForwardEntry is the next hop towards one destination. Via is state.NoNode if Dest is unreachable.
type ForwardEntry struct {
	Dest  state.NodeId
	Via   state.NodeId
	Label string
}

func (e ForwardEntry) Reachable() bool {
	return e.Via != state.NoNode
}

func (e ForwardEntry) String() string {
	return fmt.Sprintf("%d via %s", e.Dest, e.Label)
}

// ForwardTable has one entry per destination other than the source, in ascending order.
type ForwardTable []ForwardEntry

func (t ForwardTable) Lookup(dest state.NodeId) (ForwardEntry, bool) {
	for _, e := range t {
		if e.Dest == dest {
			return e, true
		}
	}
	return ForwardEntry{}, false
}

// BuildForwardTable converts predecessors into next hops. A corrupted chain is reported and the
// destination is treated as unreachable.
func BuildForwardTable(res RoutingResult, labels *state.Labels, r Router) ForwardTable {
	table := make(ForwardTable, 0, len(res.Prev))
	for d := range len(res.Prev) {
		dest := state.NodeId(d)
		if dest == res.Source {
			continue
		}
		via, err := res.NextHop(dest)
		if err != nil {
			r.Log(InconsistentState, "cannot derive next hop", "dest", dest, "err", err)
			via = state.NoNode
		}
		table = append(table, ForwardEntry{
			Dest:  dest,
			Via:   via,
			Label: labels.Of(via),
		})
	}
	return table
}
