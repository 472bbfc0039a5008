package core

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/netip"
	"slices"
	"sync"
	"time"
)

type datagram struct {
	data []byte
	from netip.AddrPort
}

// VirtualNet is an in-memory datagram network, used to run several routers in one process.
type VirtualNet struct {
	mu       sync.RWMutex
	binds    map[netip.AddrPort]*VirtualBind
	closed   chan struct{}
	stopOnce sync.Once
	// PacketLoss is the probability a datagram is dropped
	PacketLoss float64
	Latency    time.Duration
	// TransitHandler sees every datagram before delivery, returning false drops it
	TransitHandler func(from, to netip.AddrPort, data []byte) bool
}

func NewVirtualNet() *VirtualNet {
	return &VirtualNet{
		binds:  make(map[netip.AddrPort]*VirtualBind),
		closed: make(chan struct{}),
	}
}

// Bind attaches a new endpoint at addr.
func (v *VirtualNet) Bind(addr netip.AddrPort) (*VirtualBind, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.binds[addr]; ok {
		return nil, fmt.Errorf("address %s already in use", addr)
	}
	b := &VirtualBind{
		net:    v,
		addr:   addr,
		inbox:  make(chan datagram, 1024),
		closed: make(chan struct{}),
	}
	v.binds[addr] = b
	return b, nil
}

// Close stops delivery of delayed datagrams.
func (v *VirtualNet) Close() {
	v.stopOnce.Do(func() {
		close(v.closed)
	})
}

func (v *VirtualNet) deliver(from, to netip.AddrPort, data []byte) error {
	v.mu.RLock()
	dst, ok := v.binds[to]
	lossy := v.PacketLoss
	handler := v.TransitHandler
	latency := v.Latency
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("write udp %s->%s: %w", from, to, errUnreachable)
	}
	if handler != nil && !handler(from, to, data) {
		return nil
	}
	if lossy > 0 && rand.Float64() < lossy {
		return nil
	}
	pkt := datagram{data: slices.Clone(data), from: from}
	if latency == 0 {
		dst.push(pkt)
		return nil
	}
	go func() {
		select {
		case <-v.closed:
		case <-time.After(latency):
			dst.push(pkt)
		}
	}()
	return nil
}

var errUnreachable = errors.New("connection refused")

type VirtualBind struct {
	net    *VirtualNet
	addr   netip.AddrPort
	inbox  chan datagram
	closed chan struct{}
	once   sync.Once
}

func (b *VirtualBind) push(pkt datagram) {
	select {
	case <-b.closed:
	case b.inbox <- pkt:
	default:
		// receive buffer full, dropped like a real socket would
	}
}

func (b *VirtualBind) SendTo(data []byte, to netip.AddrPort) error {
	select {
	case <-b.closed:
		return net.ErrClosed
	default:
	}
	return b.net.deliver(b.addr, to, data)
}

func (b *VirtualBind) Recv(buf []byte) (int, netip.AddrPort, error) {
	select {
	case <-b.closed:
		return 0, netip.AddrPort{}, net.ErrClosed
	case pkt := <-b.inbox:
		n := copy(buf, pkt.data)
		return n, pkt.from, nil
	}
}

func (b *VirtualBind) LocalAddr() netip.AddrPort {
	return b.addr
}

func (b *VirtualBind) Close() error {
	b.once.Do(func() {
		close(b.closed)
		b.net.mu.Lock()
		delete(b.net.binds, b.addr)
		b.net.mu.Unlock()
	})
	return nil
}
