package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"

	"roomrec-server/metrics"
	"roomrec-server/recommender"
)

// RecommendationCache memoises pipeline results per snapshot and request. Keys embed the
// snapshot id, so entries of a replaced snapshot can never be hit again; Purge drops them
// early.
type RecommendationCache struct {
	cache   *otter.Cache[string, recommender.Result]
	metrics *metrics.Metrics
}

// NewRecommendationCache builds a cache holding up to size results for ttl each.
func NewRecommendationCache(size int, ttl time.Duration, m *metrics.Metrics) *RecommendationCache {
	return &RecommendationCache{
		cache: otter.Must(&otter.Options[string, recommender.Result]{
			MaximumSize:      size,
			ExpiryCalculator: otter.ExpiryWriting[string, recommender.Result](ttl),
		}),
		metrics: m,
	}
}

func (c *RecommendationCache) Get(key string) (recommender.Result, bool) {
	res, ok := c.cache.GetIfPresent(key)
	if ok {
		c.metrics.CacheHit()
	} else {
		c.metrics.CacheMiss()
	}
	return res, ok
}

func (c *RecommendationCache) Set(key string, res recommender.Result) {
	c.cache.Set(key, res)
}

// Purge removes every entry.
func (c *RecommendationCache) Purge() {
	c.cache.InvalidateAll()
}

// CacheKey normalises everything that influences a pipeline run into one string.
func CacheKey(snapshotID string, req recommender.Request, opts recommender.Options) string {
	var b strings.Builder
	b.WriteString(snapshotID)
	b.WriteByte('|')
	b.WriteString(req.TimeSlot.String())
	fmt.Fprintf(&b, "|t=%s", formatFloat(req.Temperature))
	if req.NoiseCeiling != nil {
		fmt.Fprintf(&b, "|n=%s", formatFloat(*req.NoiseCeiling))
	}
	if req.MinSeatingCapacity != nil {
		fmt.Fprintf(&b, "|s=%d", *req.MinSeatingCapacity)
	}
	fmt.Fprintf(&b, "|tol=%s|top=%d|avail=%t|w=%s,%s,%s,%s",
		formatFloat(opts.TemperatureTolerance), opts.TopN, opts.CheckAvailability,
		formatFloat(opts.Weights.Facilities), formatFloat(opts.Weights.Comfort),
		formatFloat(opts.Weights.Temperature), formatFloat(opts.Weights.Noise))
	fw := opts.FacilityWeights
	fmt.Fprintf(&b, "|fw=%s,%s,%s,%s",
		formatFloat(fw.VideoProjector), formatFloat(fw.SeatingCapacity),
		formatFloat(fw.Computers), formatFloat(fw.RobotsForTraining))
	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
