package metric_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/geometry"
	"github.com/sarchlab/cachesim/metric"
)

var _ = Describe("Metrics", func() {
	var (
		m *metric.Metrics
		c *cache.Cache
	)

	BeforeEach(func() {
		g, err := geometry.DefaultConfig().Derive()
		Expect(err).NotTo(HaveOccurred())

		m = metric.NewMetrics()
		c = cache.New(g, cache.WithObserver(m))
	})

	It("should count accesses by set and result", func() {
		c.Run([]uint64{0, 8, 16, 16, 4})

		Expect(testutil.ToFloat64(m.AccessesTotal.WithLabelValues("0", "miss"))).
			To(Equal(float64(3)))
		Expect(testutil.ToFloat64(m.AccessesTotal.WithLabelValues("0", "hit"))).
			To(Equal(float64(1)))
		Expect(testutil.ToFloat64(m.AccessesTotal.WithLabelValues("1", "miss"))).
			To(Equal(float64(1)))
		Expect(testutil.ToFloat64(m.EvictionsTotal.WithLabelValues("0"))).
			To(Equal(float64(1)))
	})

	It("should summarize by set", func() {
		c.Run([]uint64{0, 8, 16, 16, 4})

		summary, err := m.Summary()
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(Equal([]metric.SetSummary{
			{Set: 0, Hits: 1, Misses: 3, Evictions: 1},
			{Set: 1, Hits: 0, Misses: 1, Evictions: 0},
		}))
	})

	It("should return an empty summary before any access", func() {
		summary, err := m.Summary()
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(BeEmpty())
	})

	It("should count aliased tags", func() {
		c.Run([]uint64{1 << 30})

		Expect(testutil.ToFloat64(m.AliasedTotal)).To(Equal(float64(1)))
	})
})
