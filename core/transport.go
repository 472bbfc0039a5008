package core

import (
	"net"
	"net/netip"
)

// Transport is an unreliable datagram endpoint. Recv must return net.ErrClosed once Close has been called.
type Transport interface {
	SendTo(data []byte, to netip.AddrPort) error
	Recv(buf []byte) (int, netip.AddrPort, error)
	LocalAddr() netip.AddrPort
	Close() error
}

type UDPTransport struct {
	conn *net.UDPConn
}

func ListenUDP(bind netip.AddrPort) (*UDPTransport, error) {
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(bind))
	if err != nil {
		return nil, err
	}
	return &UDPTransport{conn: conn}, nil
}

func (u *UDPTransport) SendTo(data []byte, to netip.AddrPort) error {
	_, err := u.conn.WriteToUDPAddrPort(data, to)
	return err
}

func (u *UDPTransport) Recv(buf []byte) (int, netip.AddrPort, error) {
	n, from, err := u.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		return 0, netip.AddrPort{}, err
	}
	return n, netip.AddrPortFrom(from.Addr().Unmap(), from.Port()), nil
}

func (u *UDPTransport) LocalAddr() netip.AddrPort {
	return u.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

func (u *UDPTransport) Close() error {
	return u.conn.Close()
}
