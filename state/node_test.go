package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "A", Label(0))
	assert.Equal(t, "C", Label(2))
	assert.Equal(t, "Z", Label(25))
	assert.Equal(t, "AA", Label(26))
	assert.Equal(t, "AB", Label(27))
	assert.Equal(t, "ZZ", Label(701))
	assert.Equal(t, "AAA", Label(702))
	assert.Equal(t, "None", Label(NoNode))
}

func TestLabels_Bijection(t *testing.T) {
	l := NewLabels(60)
	seen := make(map[string]bool)
	for i := range 60 {
		lbl := l.Of(NodeId(i))
		assert.False(t, seen[lbl], "duplicate label %s", lbl)
		seen[lbl] = true
		id, ok := l.Id(lbl)
		assert.True(t, ok)
		assert.Equal(t, NodeId(i), id)
	}
	assert.Equal(t, "None", l.Of(60))
	_, ok := l.Id("ZZZ")
	assert.False(t, ok)
}
