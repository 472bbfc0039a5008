package state

import (
	"maps"
	"slices"
	"sync"
)

// LinkVector holds an origin's cost to every node, indexed by NodeId.
type LinkVector []int

func (v LinkVector) Clone() LinkVector {
	return slices.Clone(v)
}

// BuildOwnVector computes the vector a router advertises for itself:
// 0 to itself, the link cost to each neighbour and INF to everything else.
func BuildOwnVector(self NodeId, total int, neighbours []NeighbourCfg) LinkVector {
	vec := make(LinkVector, total)
	for i := range vec {
		vec[i] = INF
	}
	for _, n := range neighbours {
		if n.Id >= 0 && int(n.Id) < total {
			vec[n.Id] = n.Cost
		}
	}
	if self >= 0 && int(self) < total {
		vec[self] = 0
	}
	return vec
}

type storedVector struct {
	vec      LinkVector
	seqno    uint16
	hasSeqno bool
}

// TopologyStore keeps the most recently received link vector of every known origin.
// It is shared between the listen loop (writer) and route computation (reader); all access goes through mu.
type TopologyStore struct {
	mu      sync.Mutex
	self    NodeId
	own     LinkVector
	vectors map[NodeId]storedVector
}

func NewTopologyStore(self NodeId, own LinkVector) *TopologyStore {
	t := &TopologyStore{
		self:    self,
		own:     own.Clone(),
		vectors: make(map[NodeId]storedVector),
	}
	t.vectors[self] = storedVector{vec: own.Clone()}
	return t
}

func (t *TopologyStore) Self() NodeId {
	return t.self
}

// OwnVector returns the vector computed at startup. It never changes.
func (t *TopologyStore) OwnVector() LinkVector {
	return t.own.Clone()
}

// Set overwrites the vector stored for origin.
func (t *TopologyStore) Set(origin NodeId, vec LinkVector) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.vectors[origin] = storedVector{vec: vec.Clone()}
}

// SetSeqno stores vec unless a vector with a newer sequence number is already stored for origin.
// It reports whether the store was updated.
func (t *TopologyStore) SetSeqno(origin NodeId, vec LinkVector, seqno uint16) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	old, ok := t.vectors[origin]
	if ok && old.hasSeqno && SeqnoLt(seqno, old.seqno) {
		return false
	}
	t.vectors[origin] = storedVector{vec: vec.Clone(), seqno: seqno, hasSeqno: true}
	return true
}

func (t *TopologyStore) Get(origin NodeId) (LinkVector, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.vectors[origin]
	if !ok {
		return nil, false
	}
	return v.vec.Clone(), true
}

func (t *TopologyStore) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.vectors)
}

// Snapshot returns a consistent copy of every stored vector.
func (t *TopologyStore) Snapshot() map[NodeId]LinkVector {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[NodeId]LinkVector, len(t.vectors))
	for id, v := range t.vectors {
		out[id] = v.vec.Clone()
	}
	return out
}

// Origins lists the known origins in ascending order.
func (t *TopologyStore) Origins() []NodeId {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Sorted(maps.Keys(t.vectors))
}
