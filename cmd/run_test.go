package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/encodeous/lsr/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lineTopology = `3
A 0 1 6000
C 2 1 6002
`

func writeConfig(t *testing.T, name, content string) string {
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}

func TestParseRouterArgs(t *testing.T) {
	p := writeConfig(t, "B.txt", lineTopology)
	lcfg, topo, err := parseRouterArgs([]string{"1", "6001", p})
	require.NoError(t, err)
	assert.Equal(t, state.NodeId(1), lcfg.Id)
	assert.Equal(t, uint16(6001), lcfg.Port)
	assert.Equal(t, state.DefaultHost, lcfg.Host)
	assert.Equal(t, 3, topo.TotalNodes)
	assert.Len(t, topo.Neighbours, 2)
}

func TestParseRouterArgs_DedupImpliesSeqno(t *testing.T) {
	p := writeConfig(t, "B.txt", lineTopology)
	runDedup = true
	t.Cleanup(func() { runDedup = false })
	lcfg, _, err := parseRouterArgs([]string{"1", "6001", p})
	require.NoError(t, err)
	assert.True(t, lcfg.Dedup)
	assert.True(t, lcfg.Seqno)
}

func TestParseRouterArgs_Invalid(t *testing.T) {
	p := writeConfig(t, "B.txt", lineTopology)
	tests := []struct {
		name string
		args []string
	}{
		{"id not a number", []string{"x", "6001", p}},
		{"port not a number", []string{"1", "port", p}},
		{"port out of range", []string{"1", "70000", p}},
		{"port zero", []string{"1", "0", p}},
		{"id out of range", []string{"3", "6001", p}},
		{"self as neighbour", []string{"0", "6000", p}},
		{"missing file", []string{"1", "6001", filepath.Join(t.TempDir(), "missing.txt")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseRouterArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestParseRouterArgs_MalformedConfig(t *testing.T) {
	p := writeConfig(t, "bad.txt", "3\nA 0 one 6000\n")
	_, _, err := parseRouterArgs([]string{"1", "6001", p})
	assert.ErrorIs(t, err, state.ErrConfig)
}

func TestVerify(t *testing.T) {
	p := writeConfig(t, "B.yaml", `total_nodes: 3
neighbours:
  - label: A
    id: 0
    cost: 1
    port: 6000
`)
	rootCmd.SetArgs([]string{"verify", "--id", "1", p})
	assert.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"verify", "--id", "0", p})
	assert.Error(t, rootCmd.Execute())
}
