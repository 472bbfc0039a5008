package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/encodeous/lsr/protocol"
	"github.com/encodeous/lsr/state"
	"github.com/google/go-cmp/cmp"
)

func ConfigureConstants(t *testing.T) {
	adv, route, dedup := state.AdvertiseDelay, state.RouteUpdateDelay, state.DedupTTL
	state.AdvertiseDelay = 20 * time.Millisecond
	state.RouteUpdateDelay = 50 * time.Millisecond
	state.DedupTTL = 60 * time.Millisecond
	t.Cleanup(func() {
		state.AdvertiseDelay, state.RouteUpdateDelay, state.DedupTTL = adv, route, dedup
	})
}

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

// RouterHarness records router events instead of logging them
type RouterHarness struct {
	mu      sync.Mutex
	actions []HarnessEvent
}

func (h *RouterHarness) Log(event RouterEvent, desc string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, MakeEvent(event.String(), append([]any{desc}, args...)...))
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

func (h *RouterHarness) GetActions() HarnessEvents {
	h.mu.Lock()
	defer h.mu.Unlock()
	x := h.actions
	h.actions = make([]HarnessEvent, 0)
	return x
}

func (e HarnessEvents) contains(msg string) bool {
	for _, event := range e {
		if event.Message == msg {
			return true
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string) {
	t.Helper()
	if e.contains(msg) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string) {
	t.Helper()
	if e.contains(msg) {
		t.Fatal("Unexpected event found: ", msg, " in ", e)
	}
}

type sentPacket struct {
	To  netip.AddrPort
	Pkt *protocol.LinkStatePacket
}

// MockTransport records every datagram sent and lets tests inject received ones
type MockTransport struct {
	mu     sync.Mutex
	addr   netip.AddrPort
	sent   []sentPacket
	fail   map[netip.AddrPort]error
	inbox  chan []byte
	closed chan struct{}
	once   sync.Once
}

func NewMockTransport(addr netip.AddrPort) *MockTransport {
	return &MockTransport{
		addr:   addr,
		fail:   make(map[netip.AddrPort]error),
		inbox:  make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (m *MockTransport) FailTo(addr netip.AddrPort, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[addr] = err
}

func (m *MockTransport) SendTo(data []byte, to netip.AddrPort) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[to]; err != nil {
		return err
	}
	pkt := &protocol.LinkStatePacket{}
	if err := json.Unmarshal(data, pkt); err != nil {
		return err
	}
	m.sent = append(m.sent, sentPacket{To: to, Pkt: pkt})
	return nil
}

func (m *MockTransport) Recv(buf []byte) (int, netip.AddrPort, error) {
	select {
	case <-m.closed:
		return 0, netip.AddrPort{}, net.ErrClosed
	case data := <-m.inbox:
		return copy(buf, data), netip.MustParseAddrPort("127.0.0.1:9"), nil
	}
}

func (m *MockTransport) Inject(data []byte) {
	m.inbox <- data
}

func (m *MockTransport) LocalAddr() netip.AddrPort {
	return m.addr
}

func (m *MockTransport) Close() error {
	m.once.Do(func() {
		close(m.closed)
	})
	return nil
}

// Sent drains the datagrams recorded so far.
func (m *MockTransport) Sent() []sentPacket {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sent
	m.sent = nil
	return out
}

// NewHarnessRouter builds the modules of a router by hand, without starting any task.
func NewHarnessRouter(t *testing.T, self state.NodeId, topo state.TopologyCfg, lcfg state.LocalCfg) (*state.State, *Disseminator, *MockTransport, *RouterHarness) {
	t.Helper()
	ctx, cancel := context.WithCancelCause(context.Background())
	t.Cleanup(func() { cancel(context.Canceled) })
	lcfg.Id = self
	s := state.NewState(&state.Env{
		LocalCfg:    lcfg,
		TopologyCfg: topo,
		Labels:      state.NewLabels(topo.TotalNodes),
		HostIP:      netip.MustParseAddr("127.0.0.1"),
		Context:     ctx,
		Cancel:      cancel,
		Log:         slog.New(slog.DiscardHandler),
	})
	s.Topology = state.NewTopologyStore(self, state.BuildOwnVector(self, topo.TotalNodes, topo.Neighbours))
	r := &LinkStateRouter{State: s}
	s.Modules["*core.LinkStateRouter"] = r
	h := &RouterHarness{}
	mt := NewMockTransport(netip.AddrPortFrom(s.HostIP, lcfg.Port))
	d := &Disseminator{
		State:     s,
		Transport: mt,
		endpoints: neighbourEndpoints(s),
		events:    h,
	}
	if lcfg.Dedup {
		d.relayed = newRelayCache()
	}
	return s, d, mt, h
}

// MakeTopology builds the config of router self from an undirected edge list of (a, b, cost).
func MakeTopology(total int, self state.NodeId, basePort uint16, edges ...[3]int) state.TopologyCfg {
	cfg := state.TopologyCfg{TotalNodes: total}
	for _, e := range edges {
		a, b, c := state.NodeId(e[0]), state.NodeId(e[1]), e[2]
		var other state.NodeId
		switch self {
		case a:
			other = b
		case b:
			other = a
		default:
			continue
		}
		cfg.Neighbours = append(cfg.Neighbours, state.NeighbourCfg{
			Label: state.Label(other),
			Id:    other,
			Cost:  c,
			Port:  basePort + uint16(other),
		})
	}
	return cfg
}

// MakeSnapshot builds the full topology every router converges on from the same edge list.
func MakeSnapshot(total int, edges ...[3]int) map[state.NodeId]state.LinkVector {
	snap := make(map[state.NodeId]state.LinkVector, total)
	for i := range total {
		id := state.NodeId(i)
		snap[id] = state.BuildOwnVector(id, total, MakeTopology(total, id, 0, edges...).Neighbours)
	}
	return snap
}

func diffResult(want, got RoutingResult) string {
	return cmp.Diff(want, got)
}
