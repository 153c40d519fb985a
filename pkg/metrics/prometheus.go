package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsCollector struct {
	registry            *prometheus.Registry
	investmentsPlaced   prometheus.Counter
	investmentsRejected *prometheus.CounterVec
	investDuration      prometheus.Histogram
	investedAmount      prometheus.Histogram
	accountBalance      *prometheus.GaugeVec
	mu                  sync.RWMutex
	logger              *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	collector := &MetricsCollector{
		registry: registry,
		investmentsPlaced: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "investments_placed_total",
			Help: "Total number of successfully placed investments",
		}),
		investmentsRejected: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "investments_rejected_total",
			Help: "Total number of rejected investment attempts",
		}, []string{"reason"}),
		investDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "investment_processing_duration_seconds",
			Help:    "Time taken to process an investment",
			Buckets: prometheus.DefBuckets,
		}),
		investedAmount: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "investment_amount_distribution",
			Help:    "Distribution of placed investment amounts",
			Buckets: prometheus.ExponentialBuckets(100_000, 10, 5),
		}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_balance",
			Help: "Current account balance",
		}, []string{"account_id", "currency"}),
		logger: logger,
	}

	return collector
}

func (m *MetricsCollector) RecordInvestment(duration time.Duration, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.investmentsPlaced.Inc()
	m.investDuration.Observe(duration.Seconds())
	m.investedAmount.Observe(amount)
}

func (m *MetricsCollector) RecordRejection(reason string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.investmentsRejected.WithLabelValues(reason).Inc()
	m.investDuration.Observe(duration.Seconds())
}

func (m *MetricsCollector) UpdateAccountBalance(accountID, currency string, balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountBalance.WithLabelValues(accountID, currency).Set(balance)
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	m.logger.Info("Metrics collector shutdown complete")
	return nil
}
