package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LiveConnections tracks currently open chat websocket connections.
	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "volunhub_chat_live_connections",
		Help: "Number of currently open chat websocket connections.",
	})

	// MessagesSent counts chat messages successfully persisted via the gateway.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "volunhub_chat_messages_sent_total",
		Help: "Total chat messages persisted through the realtime gateway.",
	})

	// NotificationsCreated counts notification records written.
	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "volunhub_notifications_created_total",
		Help: "Total notification records created.",
	})

	// ChatErrors counts chatError events emitted to clients.
	ChatErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "volunhub_chat_errors_total",
		Help: "Total chatError events emitted to clients.",
	})
)

// Serve exposes /metrics on its own listener so the scrape endpoint never
// shares a port with the public API.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		log.Printf("Metrics listening on :%s/metrics", port)
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
}
