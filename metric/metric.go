// Package metric exports cache access counters as Prometheus metrics.
package metric

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/sarchlab/cachesim/cache"
)

const namespace = "cachesim"

// Metrics holds the per-set cache counters. It implements cache.Observer.
type Metrics struct {
	registry *prometheus.Registry

	AccessesTotal  *prometheus.CounterVec
	EvictionsTotal *prometheus.CounterVec
	AliasedTotal   prometheus.Counter
}

// NewMetrics creates the counters on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		AccessesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "accesses_total",
				Help:      "Total number of cache accesses",
			},
			[]string{"set", "result"},
		),

		EvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "evictions_total",
				Help:      "Total number of lines replaced by FIFO eviction",
			},
			[]string{"set"},
		),

		AliasedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "aliased_tags_total",
				Help:      "Total number of accesses whose tag was truncated",
			},
		),
	}

	m.registry.MustRegister(m.AccessesTotal, m.EvictionsTotal, m.AliasedTotal)

	return m
}

// Registry returns the registry the counters live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one access.
func (m *Metrics) Observe(_ int, o cache.Outcome) {
	set := strconv.Itoa(o.Set)

	result := "miss"
	if o.Hit {
		result = "hit"
	}
	m.AccessesTotal.WithLabelValues(set, result).Inc()

	if o.Evicted {
		m.EvictionsTotal.WithLabelValues(set).Inc()
	}

	if o.Aliased {
		m.AliasedTotal.Inc()
	}
}

// SetSummary is the per-set view of the counters.
type SetSummary struct {
	Set       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Summary gathers the registry and folds the counters by set. Sets that were
// never accessed are omitted. The result is sorted by set.
func (m *Metrics) Summary() ([]SetSummary, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather cache metrics: %w", err)
	}

	bySet := make(map[int]*SetSummary)
	entry := func(set int) *SetSummary {
		if s, ok := bySet[set]; ok {
			return s
		}
		s := &SetSummary{Set: set}
		bySet[set] = s
		return s
	}

	for _, family := range families {
		if family.GetType() != dto.MetricType_COUNTER {
			continue
		}

		for _, metric := range family.GetMetric() {
			labels := labelMap(metric)

			setLabel, ok := labels["set"]
			if !ok {
				continue
			}

			set, err := strconv.Atoi(setLabel)
			if err != nil {
				return nil, fmt.Errorf("bad set label %q: %w", setLabel, err)
			}

			value := uint64(metric.GetCounter().GetValue())

			switch family.GetName() {
			case namespace + "_cache_accesses_total":
				if labels["result"] == "hit" {
					entry(set).Hits += value
				} else {
					entry(set).Misses += value
				}
			case namespace + "_cache_evictions_total":
				entry(set).Evictions += value
			}
		}
	}

	summary := make([]SetSummary, 0, len(bySet))
	for _, s := range bySet {
		summary = append(summary, *s)
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Set < summary[j].Set
	})

	return summary, nil
}

func labelMap(m *dto.Metric) map[string]string {
	labels := make(map[string]string, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}

	return labels
}
