package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CatalogCacheTotal counts catalog cache lookups by outcome (hit, miss, stale, error).
	CatalogCacheTotal *prometheus.CounterVec
	// SupplierRequestsTotal counts upstream catalog requests by outcome.
	SupplierRequestsTotal *prometheus.CounterVec
	// SupplierLatency records upstream catalog request latency in milliseconds.
	SupplierLatency *prometheus.HistogramVec
	// CatalogRefreshTotal counts background catalog refresh runs.
	CatalogRefreshTotal *prometheus.CounterVec
	// MarkupAppliedTotal counts markup computations by rate scope (global, regional).
	MarkupAppliedTotal *prometheus.CounterVec
	// InvoiceRenderTotal counts invoice renders by outcome.
	InvoiceRenderTotal *prometheus.CounterVec
	// InvoiceEmailTotal counts invoice deliveries by e-mail.
	InvoiceEmailTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CatalogCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Count of catalog cache lookups by outcome.",
		}, []string{"result"})
		SupplierRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supplier_requests_total",
			Help:      "Count of upstream supplier catalog requests by outcome.",
		}, []string{"result"})
		SupplierLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "supplier_request_duration_ms",
			Help:      "Latency of upstream supplier catalog requests in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"result"})
		CatalogRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refresh_total",
			Help:      "Count of background catalog refresh runs by outcome.",
		}, []string{"result"})
		MarkupAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "markup_applied_total",
			Help:      "Count of markup computations by rate scope.",
		}, []string{"scope"})
		InvoiceRenderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_render_total",
			Help:      "Count of invoice renders by outcome.",
		}, []string{"result"})
		InvoiceEmailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_email_total",
			Help:      "Count of invoice e-mail deliveries by outcome.",
		}, []string{"result"})

		CatalogCacheTotal = register(reg, CatalogCacheTotal)
		SupplierRequestsTotal = register(reg, SupplierRequestsTotal)
		SupplierLatency = register(reg, SupplierLatency)
		CatalogRefreshTotal = register(reg, CatalogRefreshTotal)
		MarkupAppliedTotal = register(reg, MarkupAppliedTotal)
		InvoiceRenderTotal = register(reg, InvoiceRenderTotal)
		InvoiceEmailTotal = register(reg, InvoiceEmailTotal)
	})
}

// IncDomain increments vec for the label value when domain metrics are registered.
func IncDomain(vec *prometheus.CounterVec, label string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(label).Inc()
}
