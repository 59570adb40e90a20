// Package metrics exposes a small local HTTP endpoint for Prometheus
// scraping and a liveness check — the same chi + render + promauto pairing
// the ancestor streaming daemon used for its own request metrics,
// repurposed here for the mirroring daemon's own health signals.
package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gauges are updated by the orchestrator: the disk and torrent-count gauges
// once per enforcement tick, State also on every state transition, and the
// transfer totals on every statistics flush.
type Gauges struct {
	State           prometheus.Gauge
	DiskUsageBytes  prometheus.Gauge
	DiskBudgetBytes prometheus.Gauge
	OverBudget      prometheus.Gauge
	TorrentCount    prometheus.Gauge
	TotalDownloaded prometheus.Gauge
	TotalUploaded   prometheus.Gauge
}

// NewGauges registers and returns the daemon's gauge set.
func NewGauges() *Gauges {
	return &Gauges{
		State:           promauto.NewGauge(prometheus.GaugeOpts{Name: "levin_state", Help: "Current orchestrator state as an ordinal (OFF=0..DOWNLOADING=4)."}),
		DiskUsageBytes:  promauto.NewGauge(prometheus.GaugeOpts{Name: "levin_disk_usage_bytes", Help: "Actual block usage of the data directory."}),
		DiskBudgetBytes: promauto.NewGauge(prometheus.GaugeOpts{Name: "levin_disk_budget_bytes", Help: "Bytes still permitted to be acquired this tick."}),
		OverBudget:      promauto.NewGauge(prometheus.GaugeOpts{Name: "levin_over_budget", Help: "1 if the data directory is over its configured budget."}),
		TorrentCount:    promauto.NewGauge(prometheus.GaugeOpts{Name: "levin_torrent_count", Help: "Number of torrents currently tracked."}),
		TotalDownloaded: promauto.NewGauge(prometheus.GaugeOpts{Name: "levin_total_downloaded_bytes", Help: "Cumulative bytes downloaded across restarts."}),
		TotalUploaded:   promauto.NewGauge(prometheus.GaugeOpts{Name: "levin_total_uploaded_bytes", Help: "Cumulative bytes uploaded across restarts."}),
	}
}

// NewServer builds the /metrics + /healthz HTTP server. It is never
// started unless the operator configures a listen address.
func NewServer(addr string) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]string{"status": "ok"})
	})
	return &http.Server{Addr: addr, Handler: r}
}
