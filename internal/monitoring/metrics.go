package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ScansTotal     *prometheus.CounterVec
	ExtractedTotal *prometheus.CounterVec
	NewTotal       *prometheus.CounterVec
	NotifiedTotal  *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwatch_scans_total",
			Help: "The total number of scan batches run",
		}, nil),
		ExtractedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwatch_listings_extracted_total",
			Help: "The total number of listing drafts extracted",
		}, []string{"site"}),
		NewTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwatch_listings_new_total",
			Help: "The total number of listings classified as new",
		}, nil),
		NotifiedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwatch_notifications_sent_total",
			Help: "The total number of listing notifications delivered",
		}, nil),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rentwatch_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g. 'network', 'http_status', 'dispatch'
	}
}

func (m *Metrics) IncScansTotal() {
	m.ScansTotal.WithLabelValues().Inc()
}

func (m *Metrics) AddExtracted(site string, n int) {
	m.ExtractedTotal.WithLabelValues(site).Add(float64(n))
}

func (m *Metrics) IncNewTotal() {
	m.NewTotal.WithLabelValues().Inc()
}

func (m *Metrics) IncNotifiedTotal() {
	m.NotifiedTotal.WithLabelValues().Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
