package cache_test

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/cache"
)

func hits(outcomes []cache.Outcome) []bool {
	out := make([]bool, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Hit
	}

	return out
}

var _ = Describe("Cache", func() {
	var c *cache.Cache

	BeforeEach(func() {
		// 16B, 4B blocks, 2-way: 2 sets.
		c = cache.New(mustDerive(16, 4, 2, 20))
	})

	Describe("Access", func() {
		It("should miss on a cold cache and report decoded fields", func() {
			o := c.Access(13)
			Expect(o).To(Equal(cache.Outcome{
				Address: 13,
				Tag:     1,
				Set:     1,
				Offset:  1,
				Hit:     false,
				Line:    2,
			}))
		})

		It("should hit on the same block", func() {
			c.Access(8)
			o := c.Access(11)
			Expect(o.Hit).To(BeTrue())
			Expect(o.Tag).To(Equal(uint64(1)))
			Expect(o.Offset).To(Equal(uint64(3)))
			Expect(o.Line).To(Equal(0))
		})

		It("should not reorder the resident queue on a hit", func() {
			c.Access(0)
			c.Access(8)
			before := c.Store().ResidentTags(0)

			Expect(c.Access(0).Hit).To(BeTrue())
			Expect(c.Access(0).Hit).To(BeTrue())
			Expect(c.Store().ResidentTags(0)).To(Equal(before))
		})

		It("should report the evicted tag", func() {
			c.Access(0)
			c.Access(8)
			o := c.Access(16)
			Expect(o.Hit).To(BeFalse())
			Expect(o.Evicted).To(BeTrue())
			Expect(o.EvictedTag).To(Equal(uint64(0)))
			Expect(o.Line).To(Equal(0))
		})
	})

	Describe("FIFO replacement", func() {
		It("should evict the first admitted tag after ways+1 misses", func() {
			c = cache.New(mustDerive(64, 4, 4, 20))
			// 4 sets; set 0 addresses are multiples of 16.
			for tag := uint64(1); tag <= 5; tag++ {
				Expect(c.Access(tag * 16).Hit).To(BeFalse())
			}

			Expect(c.Store().ResidentTags(0)).To(Equal([]uint64{2, 3, 4, 5}))
			Expect(c.Access(16).Hit).To(BeFalse())
		})

		It("should evict by age even when the oldest line was just hit", func() {
			c.Access(0)
			c.Access(8)
			Expect(c.Access(0).Hit).To(BeTrue())

			c.Access(16)
			Expect(c.Store().ResidentTags(0)).To(Equal([]uint64{1, 2}))
		})
	})

	Describe("Scenarios", func() {
		It("should run three set-0 misses then miss the evicted block", func() {
			// 0, 8, 16 all map to set 0 with tags 0, 1, 2.
			outcomes := c.Run([]uint64{0, 8, 16, 0, 16})
			Expect(hits(outcomes)).To(Equal([]bool{false, false, false, false, true}))

			for _, o := range outcomes[:3] {
				Expect(o.Set).To(Equal(0))
			}
			Expect(outcomes[2].EvictedTag).To(Equal(uint64(0)))
			Expect(outcomes[3].EvictedTag).To(Equal(uint64(1)))
			Expect(c.Store().ResidentTags(0)).To(Equal([]uint64{2, 0}))
		})

		It("should spread 0, 4, 8 over both sets", func() {
			outcomes := c.Run([]uint64{0, 4, 8, 0, 4})
			Expect(hits(outcomes)).To(Equal([]bool{false, false, false, true, true}))
			Expect(outcomes[1].Set).To(Equal(1))
		})

		It("should thrash a single-line cache", func() {
			c = cache.New(mustDerive(4, 4, 1, 20))

			outcomes := c.Run([]uint64{0, 4, 0, 4, 5})
			Expect(hits(outcomes)).To(Equal([]bool{false, false, false, false, true}))
			for _, o := range outcomes[1:4] {
				Expect(o.Evicted).To(BeTrue())
			}
			Expect(c.Stats().Evictions).To(Equal(uint64(3)))
		})

		It("should alias tags that differ only above the tag width", func() {
			outcomes := c.Run([]uint64{0, 1 << 23})
			Expect(outcomes[1].Hit).To(BeTrue())
			Expect(outcomes[1].Aliased).To(BeTrue())
			Expect(c.Stats().Aliased).To(Equal(uint64(1)))
		})
	})

	Describe("Accessors", func() {
		It("should expose the geometry and decoder it was built with", func() {
			Expect(c.Geometry().NumSets).To(Equal(2))

			o := c.Access(0x1234)
			f := cache.Fields{Tag: o.Tag, Set: o.Set, Offset: o.Offset}
			Expect(c.Decoder().Encode(f)).To(Equal(uint64(0x1234)))
		})
	})

	Describe("Snapshot", func() {
		It("should dump every line in array order with its set", func() {
			c.Run([]uint64{0, 4, 8})

			Expect(c.Snapshot()).To(Equal([]cache.LineState{
				{Index: 0, Valid: true, Tag: 0, Set: 0},
				{Index: 1, Valid: true, Tag: 1, Set: 0},
				{Index: 2, Valid: true, Tag: 0, Set: 1},
				{Index: 3, Valid: false, Tag: 0, Set: 1},
			}))
		})
	})

	Describe("Statistics", func() {
		It("should count hits, misses and evictions", func() {
			c.Run([]uint64{0, 8, 16, 16, 0})

			stats := c.Stats()
			Expect(stats.Accesses).To(Equal(uint64(5)))
			Expect(stats.Hits).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(4)))
			Expect(stats.Evictions).To(Equal(uint64(2)))
			Expect(stats.HitRate()).To(BeNumerically("~", 0.2))
		})

		It("should return 0 hit rate with no accesses", func() {
			Expect(c.Stats().HitRate()).To(Equal(float64(0)))
		})

		It("should clear state on reset", func() {
			c.Run([]uint64{0, 8})
			c.Reset()

			Expect(c.Stats()).To(Equal(cache.Statistics{}))
			Expect(c.Access(0).Hit).To(BeFalse())
		})
	})

	Describe("Observers", func() {
		var mockCtrl *gomock.Controller

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should notify observers in access order", func() {
			observer := NewMockObserver(mockCtrl)
			c = cache.New(mustDerive(16, 4, 2, 20), cache.WithObserver(observer))

			gomock.InOrder(
				observer.EXPECT().Observe(1, gomock.Any()).
					Do(func(_ int, o cache.Outcome) {
						Expect(o.Hit).To(BeFalse())
					}),
				observer.EXPECT().Observe(2, gomock.Any()).
					Do(func(_ int, o cache.Outcome) {
						Expect(o.Hit).To(BeTrue())
					}),
			)

			c.Run([]uint64{0, 1})
		})
	})

	Describe("Logging", func() {
		It("should log evictions and aliasing", func() {
			buf := new(bytes.Buffer)
			logger := slog.New(slog.NewTextHandler(buf,
				&slog.HandlerOptions{Level: slog.LevelDebug}))
			c = cache.New(mustDerive(4, 4, 1, 20), cache.WithLogger(logger))

			c.Run([]uint64{0, 4, 1 << 22})

			Expect(buf.String()).To(ContainSubstring("evicted line"))
			Expect(buf.String()).To(ContainSubstring("tag truncated"))
		})
	})
})
