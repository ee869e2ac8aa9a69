package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route", "status"},
	)
	ledgerWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_writes_total",
			Help: "Ledger write operations by kind and result.",
		},
		[]string{"kind", "result"},
	)
	ledgerChainValid = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_chain_valid",
			Help: "1 if the last chain verification succeeded, 0 otherwise.",
		},
	)
	systemMemUsedPercent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "system_memory_used_percent",
			Help: "Host memory usage in percent.",
		},
	)
	processRSSBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_process_rss_bytes",
			Help: "Resident memory of the ledger process.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(ledgerWritesTotal)
	prometheus.MustRegister(ledgerChainValid)
	prometheus.MustRegister(systemMemUsedPercent)
	prometheus.MustRegister(processRSSBytes)
}

// RecordRequest はHTTPリクエスト1件分を記録する
func RecordRequest(method, route string, statusCode int, duration time.Duration) {
	status := ClassifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RecordLedgerWrite は台帳への書き込み結果を記録する
func RecordLedgerWrite(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ledgerWritesTotal.WithLabelValues(kind, result).Inc()
}

func RecordChainVerification(valid bool) {
	if valid {
		ledgerChainValid.Set(1)
		return
	}
	ledgerChainValid.Set(0)
}

// 定期ジョブが集めたホストとプロセスの使用量
func SetSystemUsage(memUsedPercent float64, rssBytes uint64) {
	systemMemUsedPercent.Set(memUsedPercent)
	processRSSBytes.Set(float64(rssBytes))
}

// ClassifyStatus は "2xx" のような文字列にまとめる
func ClassifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

func Handler() http.Handler {
	return promhttp.Handler()
}
