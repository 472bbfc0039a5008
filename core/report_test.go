package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/encodeous/lsr/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRouteTable(t *testing.T) {
	labels := state.NewLabels(4)
	res := ComputeRoutes(0, 4, state.LinkVector{0, 1, state.INF, state.INF},
		MakeSnapshot(4, [3]int{0, 1, 1}, [3]int{1, 2, 1}), &RouterHarness{})
	rt := &RouteTable{RoutingResult: res, Forward: BuildForwardTable(res, labels, &RouterHarness{})}

	sb := &strings.Builder{}
	require.NoError(t, PrintRouteTable(sb, labels, rt))
	out := sb.String()

	assert.Contains(t, out, "Router A\n")
	assert.Contains(t, out, "The forwarding table in A is printed as follows:\n")
	assert.Contains(t, out, fmt.Sprintf("%-20d | %-10d | %-15d\n", 2, 2, 1))
	assert.Contains(t, out, fmt.Sprintf("%-20d | %-10d | %-15d\n", 3, state.INF, -1))
	assert.Contains(t, out, fmt.Sprintf("%-20d | %-20s\n", 2, "B"))
	assert.Contains(t, out, fmt.Sprintf("%-20d | %-20s\n", 3, "None"))
	assert.NotContains(t, out, fmt.Sprintf("%-20d | %-20s\n", 0, "A"))
}
