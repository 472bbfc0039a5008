package state

import "time"

const (
	// INF is the cost advertised for a node that is not a direct neighbour.
	INF = 999
	// NoNode marks a missing predecessor.
	NoNode NodeId = -1
)

var (
	AdvertiseDelay   = time.Second * 1
	RouteUpdateDelay = time.Second * 10
	// DedupTTL bounds how long a relayed ttl is remembered per origin when relay de-duplication is on.
	DedupTTL      = 3 * AdvertiseDelay
	MaxPacketSize = 64 * 1024
	DefaultHost   = "localhost"
)
