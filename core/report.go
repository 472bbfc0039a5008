package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/encodeous/lsr/state"
)

const reportRule = "------------------------------------------------"

// PrintRouteTable dumps the shortest path results and the forwarding table.
func PrintRouteTable(w io.Writer, labels *state.Labels, rt *RouteTable) error {
	sb := strings.Builder{}
	self := labels.Of(rt.Source)
	sb.WriteString(strings.Repeat("=", len(reportRule)) + "\n")
	sb.WriteString(fmt.Sprintf("Router %s\n", self))
	sb.WriteString(reportRule + "\n")
	sb.WriteString("Dijkstra results:\n")
	sb.WriteString(fmt.Sprintf("%-20s | %-10s | %-15s\n", "Destination Routerid", "Distance", "Previous node id"))
	sb.WriteString(reportRule + "\n")
	for i, d := range rt.Dist {
		sb.WriteString(fmt.Sprintf("%-20d | %-10d | %-15d\n", i, d, rt.Prev[i]))
	}
	sb.WriteString(reportRule + "\n")
	sb.WriteString(fmt.Sprintf("The forwarding table in %s is printed as follows:\n", self))
	sb.WriteString(fmt.Sprintf("%-20s | %-20s\n", "Destination Routerid", "Next hop routerlabel"))
	sb.WriteString(reportRule + "\n")
	for _, e := range rt.Forward {
		sb.WriteString(fmt.Sprintf("%-20d | %-20s\n", e.Dest, e.Label))
	}
	sb.WriteString(strings.Repeat("=", len(reportRule)) + "\n\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
