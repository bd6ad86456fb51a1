// Package metrics exposes prometheus counters for quotation activity.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "quotedesk_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	quotationSaves   *prometheus.CounterVec
	quotationDeletes prometheus.Counter
	exportTotal      *prometheus.CounterVec
	exportLatency    *prometheus.HistogramVec
	loginAttempts    *prometheus.CounterVec
	productImports   *prometheus.CounterVec
)

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		quotationSaves = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "quotation_saves_total",
				Help: "Quotations saved by operation (create, update) and result",
			},
			[]string{"operation", "result"},
		)
		quotationDeletes = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "quotation_deletes_total",
			Help: "Quotations deleted",
		})
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Quotation exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Quotation export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)
		loginAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		)
		productImports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "product_import_rows_total",
				Help: "Imported product rows by outcome (created, updated, invalid)",
			},
			[]string{"outcome"},
		)

		prometheus.MustRegister(
			quotationSaves,
			quotationDeletes,
			exportTotal,
			exportLatency,
			loginAttempts,
			productImports,
		)
	})
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// ObserveQuotationSave counts a create or update.
func ObserveQuotationSave(operation string, err error) {
	if quotationSaves != nil {
		quotationSaves.WithLabelValues(operation, resultOf(err)).Inc()
	}
}

func IncQuotationDelete() {
	if quotationDeletes != nil {
		quotationDeletes.Inc()
	}
}

// ObserveExport records an export and its duration.
func ObserveExport(format string, err error, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, resultOf(err)).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

func ObserveLogin(err error) {
	if loginAttempts != nil {
		loginAttempts.WithLabelValues(resultOf(err)).Inc()
	}
}

// AddProductImportRows counts import rows per outcome.
func AddProductImportRows(created, updated, invalid int) {
	if productImports == nil {
		return
	}
	productImports.WithLabelValues("created").Add(float64(created))
	productImports.WithLabelValues("updated").Add(float64(updated))
	productImports.WithLabelValues("invalid").Add(float64(invalid))
}
