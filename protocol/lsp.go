// Package protocol defines the link-state packet exchanged between routers, one packet per datagram.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/encodeous/lsr/state"
)

const TypeLSP = "LSP"

var ErrMalformedPacket = errors.New("malformed link-state packet")

// LinkStatePacket carries one origin's link vector. SenderId is rewritten at every hop,
// Ttl is the remaining hop budget.
type LinkStatePacket struct {
	Type       string           `json:"type"`
	SenderId   state.NodeId     `json:"sender_id"`
	OriginId   state.NodeId     `json:"origin_id"`
	LinkVector state.LinkVector `json:"link_vector"`
	Ttl        int              `json:"ttl"`
	Seqno      *uint16          `json:"seqno,omitempty"`
}

func NewLSP(origin state.NodeId, vec state.LinkVector, ttl int) *LinkStatePacket {
	return &LinkStatePacket{
		Type:       TypeLSP,
		SenderId:   origin,
		OriginId:   origin,
		LinkVector: vec,
		Ttl:        ttl,
	}
}

func (p *LinkStatePacket) WithSeqno(seqno uint16) *LinkStatePacket {
	p.Seqno = &seqno
	return p
}

func (p *LinkStatePacket) String() string {
	return fmt.Sprintf("LSP(origin: %d, sender: %d, ttl: %d, vec: %v)", p.OriginId, p.SenderId, p.Ttl, p.LinkVector)
}

func Encode(p *LinkStatePacket) ([]byte, error) {
	return json.Marshal(p)
}

// Decode parses a datagram and checks it against a network of total nodes.
func Decode(data []byte, total int) (*LinkStatePacket, error) {
	p := &LinkStatePacket{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPacket, err)
	}
	if err := p.Validate(total); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LinkStatePacket) Validate(total int) error {
	if p.Type != TypeLSP {
		return fmt.Errorf("%w: unknown type %q", ErrMalformedPacket, p.Type)
	}
	if p.OriginId < 0 || int(p.OriginId) >= total {
		return fmt.Errorf("%w: origin %d out of range", ErrMalformedPacket, p.OriginId)
	}
	if p.SenderId < 0 || int(p.SenderId) >= total {
		return fmt.Errorf("%w: sender %d out of range", ErrMalformedPacket, p.SenderId)
	}
	if len(p.LinkVector) != total {
		return fmt.Errorf("%w: link vector has %d entries, expected %d", ErrMalformedPacket, len(p.LinkVector), total)
	}
	for i, c := range p.LinkVector {
		if c < 0 || c > state.INF {
			return fmt.Errorf("%w: cost %d to node %d outside [0, %d]", ErrMalformedPacket, c, i, state.INF)
		}
	}
	return nil
}
