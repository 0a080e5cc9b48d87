/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package registry

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the registry's Prometheus collectors, built unregistered so
// a caller embedding multiple Registries can label and register them itself
// without a global-registry name collision.
type metrics struct {
	connectionsJoined prometheus.Counter
	connectionsOpen   prometheus.Gauge
	recvEvents        prometheus.Counter
	sendEvents        prometheus.Counter
	errorEvents       prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		connectionsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netcore",
			Subsystem: "registry",
			Name:      "connections_joined_total",
			Help:      "Total connections successfully joined to the registry.",
		}),
		connectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netcore",
			Subsystem: "registry",
			Name:      "connections_open",
			Help:      "Connections currently present in the registry.",
		}),
		recvEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netcore",
			Subsystem: "registry",
			Name:      "recv_events_total",
			Help:      "Total Recv EventRecords dispatched.",
		}),
		sendEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netcore",
			Subsystem: "registry",
			Name:      "send_events_total",
			Help:      "Total Send EventRecords dispatched.",
		}),
		errorEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netcore",
			Subsystem: "registry",
			Name:      "error_events_total",
			Help:      "Total Error EventRecords dispatched.",
		}),
	}
}

// Collectors exposes the registry's Prometheus collectors so the embedding
// application can register them on its own prometheus.Registerer.
func (r *Registry) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		r.metrics.connectionsJoined,
		r.metrics.connectionsOpen,
		r.metrics.recvEvents,
		r.metrics.sendEvents,
		r.metrics.errorEvents,
	}
}
