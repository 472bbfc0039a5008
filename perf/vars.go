package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	RouteComputeLatency = metric.NewHistogram("1m1s")
	LspSentPerSecond    = metric.NewCounter("10s1s")
	LspRecvPerSecond    = metric.NewCounter("10s1s")
	LspRelayedPerSecond = metric.NewCounter("10s1s")
	LspDroppedPerSecond = metric.NewCounter("10s1s")
	SendFailures        = metric.NewCounter("1m1s")
	RecvBytesPerSecond  = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("lsr:LspSent/s", LspSentPerSecond)
	expvar.Publish("lsr:LspRecv/s", LspRecvPerSecond)
	expvar.Publish("lsr:LspRelayed/s", LspRelayedPerSecond)
	expvar.Publish("lsr:LspDropped/s", LspDroppedPerSecond)
	expvar.Publish("lsr:SendFailures", SendFailures)
	expvar.Publish("lsr:RecvBytes/s", RecvBytesPerSecond)
	expvar.Publish("lsr:RouteComputeLatency (µs)", RouteComputeLatency)
}
