package core

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/encodeous/lsr/perf"
	"github.com/encodeous/lsr/protocol"
	"github.com/encodeous/lsr/state"
	"github.com/jellydator/ttlcache/v3"
)

// dedupKey identifies one advertisement: its origin and sequence number
type dedupKey = state.Pair[state.NodeId, int]

// Disseminator advertises the router's own link vector and floods received advertisements to every neighbour.
type Disseminator struct {
	*state.State
	Transport Transport
	events    Router
	endpoints []state.Pair[state.NodeId, netip.AddrPort]
	seqno     uint16
	// relayed remembers the best ttl relayed per advertisement, only when de-duplication is enabled
	relayed *ttlcache.Cache[dedupKey, int]
}

func (d *Disseminator) Init(s *state.State) error {
	s.Log.Debug("init disseminator")
	d.State = s
	d.events = Get[*LinkStateRouter](s)
	d.endpoints = neighbourEndpoints(s)
	if s.Dedup {
		d.relayed = newRelayCache()
	}
	// seeded from the clock so a restarted router is not stuck behind its own older sequence numbers
	d.seqno = uint16(time.Now().UnixMilli() / max(state.AdvertiseDelay.Milliseconds(), 1))

	if t, ok := s.AuxConfig["transport"].(Transport); ok {
		d.Transport = t
	}
	if d.Transport == nil {
		t, err := bindTransport(s)
		if err != nil {
			return err
		}
		d.Transport = t
	}
	s.Log.Info("listening for link-state packets", "addr", d.Transport.LocalAddr())

	s.RepeatTask(d.advertise, state.AdvertiseDelay)
	s.Go(d.listen)
	return nil
}

func bindTransport(s *state.State) (Transport, error) {
	bind := netip.AddrPortFrom(s.HostIP, s.Port)
	if vn, ok := s.AuxConfig["vnet"].(*VirtualNet); ok {
		b, err := vn.Bind(bind)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", bind, err)
		}
		return b, nil
	}
	u, err := ListenUDP(bind)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", bind, err)
	}
	return u, nil
}

func neighbourEndpoints(s *state.State) []state.Pair[state.NodeId, netip.AddrPort] {
	eps := make([]state.Pair[state.NodeId, netip.AddrPort], 0, len(s.Neighbours))
	for _, n := range s.Neighbours {
		eps = append(eps, state.Pair[state.NodeId, netip.AddrPort]{V1: n.Id, V2: n.Endpoint(s.HostIP)})
	}
	return eps
}

func newRelayCache() *ttlcache.Cache[dedupKey, int] {
	return ttlcache.New[dedupKey, int](
		ttlcache.WithTTL[dedupKey, int](state.DedupTTL),
		ttlcache.WithDisableTouchOnHit[dedupKey, int](),
	)
}

func (d *Disseminator) Cleanup(s *state.State) error {
	if d.Transport == nil {
		return nil
	}
	err := d.Transport.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (d *Disseminator) advertise(s *state.State) error {
	pkt := protocol.NewLSP(s.Id, s.Topology.OwnVector(), s.TotalNodes)
	if s.Seqno {
		d.seqno++
		pkt.WithSeqno(d.seqno)
	}
	if d.relayed != nil {
		d.relayed.DeleteExpired()
	}
	return d.broadcast(pkt)
}

// broadcast unicasts pkt to every neighbour. A failing neighbour does not stop the others.
func (d *Disseminator) broadcast(pkt *protocol.LinkStatePacket) error {
	data, err := protocol.Encode(pkt)
	if err != nil {
		return err
	}
	for _, ep := range d.endpoints {
		err := d.Transport.SendTo(data, ep.V2)
		if err != nil {
			if errors.Is(err, net.ErrClosed) && d.Context.Err() != nil {
				return nil
			}
			perf.SendFailures.Add(1)
			d.events.Log(SendFailed, "failed to send link state", "to", d.Labels.Of(ep.V1), "addr", ep.V2, "err", err)
			continue
		}
		perf.LspSentPerSecond.Add(1)
	}
	return nil
}

func (d *Disseminator) listen(s *state.State) error {
	buf := make([]byte, state.MaxPacketSize)
	for {
		n, from, err := d.Transport.Recv(buf)
		if err != nil {
			if s.Context.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.Log.Warn("receive error", "err", err)
			continue
		}
		perf.RecvBytesPerSecond.Add(float64(n))
		pkt, err := protocol.Decode(buf[:n], s.TotalNodes)
		if err != nil {
			perf.LspDroppedPerSecond.Add(1)
			d.events.Log(MalformedPacket, "discarded datagram", "from", from, "err", err)
			continue
		}
		perf.LspRecvPerSecond.Add(1)
		if err := d.HandleLSP(pkt); err != nil {
			return err
		}
	}
}

// HandleLSP stores the advertised vector and relays the packet while it has hops left.
// Packets that originated here are never relayed.
func (d *Disseminator) HandleLSP(pkt *protocol.LinkStatePacket) error {
	d.events.Log(LspReceived, "received link state", "origin", pkt.OriginId, "sender", pkt.SenderId, "ttl", pkt.Ttl)
	if d.Seqno && pkt.Seqno != nil {
		if !d.Topology.SetSeqno(pkt.OriginId, pkt.LinkVector, *pkt.Seqno) {
			perf.LspDroppedPerSecond.Add(1)
			d.events.Log(LspRejected, "older sequence number", "origin", pkt.OriginId, "seqno", *pkt.Seqno)
			return nil
		}
	} else {
		d.Topology.Set(pkt.OriginId, pkt.LinkVector)
	}

	pkt.Ttl--
	if pkt.Ttl <= 0 || pkt.OriginId == d.Id {
		return nil
	}
	if d.relayed != nil && pkt.Seqno != nil && !d.shouldRelay(pkt) {
		d.events.Log(LspSuppressed, "already relayed", "origin", pkt.OriginId, "ttl", pkt.Ttl)
		return nil
	}
	pkt.SenderId = d.Id
	d.events.Log(LspRelayed, "relaying link state", "origin", pkt.OriginId, "ttl", pkt.Ttl)
	perf.LspRelayedPerSecond.Add(1)
	return d.broadcast(pkt)
}

// shouldRelay only lets through a copy carrying more remaining hops than any copy of the same
// sequenced advertisement relayed recently. Unsequenced copies cannot be told apart and are always relayed.
func (d *Disseminator) shouldRelay(pkt *protocol.LinkStatePacket) bool {
	key := dedupKey{V1: pkt.OriginId, V2: int(*pkt.Seqno)}
	if item := d.relayed.Get(key); item != nil && item.Value() >= pkt.Ttl {
		return false
	}
	d.relayed.Set(key, pkt.Ttl, ttlcache.DefaultTTL)
	return true
}
