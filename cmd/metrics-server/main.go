// Standalone Prometheus metrics exporter for the contract risk pipeline.
// Adapted from the teacher's minimal metrics-server sidecar: this process
// exists so the gin analysis server can stay lean and a scraper can hit a
// dedicated port without sharing the request path of the main service.
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"legalrisk/internal/metrics"
)

var (
	metricRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "legalrisk_metrics_requests_total", Help: "Total metric endpoint requests"},
		[]string{"endpoint"},
	)
	metricStartup = prometheus.NewGauge(prometheus.GaugeOpts{Name: "legalrisk_metrics_startup_timestamp", Help: "Unix time when the metrics server started"})
)

func init() {
	prometheus.MustRegister(metricRequests, metricStartup)
	metrics.MustRegister(prometheus.DefaultRegisterer)
	metricStartup.Set(float64(time.Now().Unix()))
}

func main() {
	addr := getenv("LEGALRISK_METRICS_ADDR", ":9090")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		metricRequests.WithLabelValues("/healthz").Inc()
		w.Write([]byte("ok"))
	})
	log.Printf("metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
