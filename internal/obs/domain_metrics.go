package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ComparisonsTotal counts store comparison requests by outcome.
	ComparisonsTotal *prometheus.CounterVec
	// ComparisonDuration records end-to-end comparison latency in milliseconds.
	ComparisonDuration prometheus.Histogram
	// PriceLookupsTotal counts price resolver lookups by result (hit, miss, error).
	PriceLookupsTotal *prometheus.CounterVec
	// PriceSubmissionsTotal counts accepted price submissions by entered currency.
	PriceSubmissionsTotal *prometheus.CounterVec
	// ListMergeTotal counts list item additions by merge outcome (inserted, merged).
	ListMergeTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ComparisonsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Count of shopping list comparison requests by outcome.",
		}, []string{"result"})
		ComparisonDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparison_duration_ms",
			Help:      "Latency of store comparison computation in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		})
		PriceLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_lookups_total",
			Help:      "Count of price resolver lookups by result.",
		}, []string{"result"})
		PriceSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_submissions_total",
			Help:      "Count of accepted price submissions by entered currency.",
		}, []string{"currency"})
		ListMergeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_merge_total",
			Help:      "Count of shopping list item additions by merge outcome.",
		}, []string{"outcome"})

		mustRegisterCollector(reg, ComparisonsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ComparisonsTotal = v
			}
		})
		mustRegisterCollector(reg, ComparisonDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				ComparisonDuration = v
			}
		})
		mustRegisterCollector(reg, PriceLookupsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PriceLookupsTotal = v
			}
		})
		mustRegisterCollector(reg, PriceSubmissionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PriceSubmissionsTotal = v
			}
		})
		mustRegisterCollector(reg, ListMergeTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ListMergeTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
