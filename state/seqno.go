package state

// Sequence numbers wrap, comparisons follow RFC 1982 serial number arithmetic.

func SeqnoLt(a, b uint16) bool {
	x := b - a
	return 0 < x && x < 32768
}
