package book

import (
	"sync"
	"time"

	"github.com/openalpha/artbook/internal/art"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the matching engine's Prometheus metrics. Trimmed down
// to what the core itself produces: order/trade counters, matching
// latency, book-shape gauges, and ART node-pool hit/miss counters.
// Position, funding, liquidation, and transport-layer metrics live
// outside this package's scope.
type Collector struct {
	OrdersTotal     *prometheus.CounterVec
	OrdersActive    *prometheus.GaugeVec
	RejectsTotal    *prometheus.CounterVec
	MatchingLatency prometheus.Histogram
	TradesTotal     prometheus.Counter
	TradeVolume     prometheus.Counter
	BookDepth       *prometheus.GaugeVec
	SpreadTicks     prometheus.Gauge
	PoolHits        *prometheus.CounterVec
	PoolMisses      *prometheus.CounterVec
}

var (
	collector     *Collector
	collectorOnce sync.Once
)

// GetCollector returns the process-wide singleton collector, creating it
// and registering it with prometheus.DefaultRegisterer on first use.
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
		collector.Register(prometheus.DefaultRegisterer)
	})
	return collector
}

func newCollector() *Collector {
	c := &Collector{}

	c.OrdersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artbook",
		Subsystem: "orders",
		Name:      "total",
		Help:      "Total number of order commands submitted, by side.",
	}, []string{"side"})

	c.OrdersActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "artbook",
		Subsystem: "orders",
		Name:      "active",
		Help:      "Number of resting orders, by side.",
	}, []string{"side"})

	c.RejectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artbook",
		Subsystem: "orders",
		Name:      "rejects_total",
		Help:      "Total number of rejected order commands, by reason.",
	}, []string{"reason"})

	c.MatchingLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "artbook",
		Subsystem: "matching",
		Name:      "latency_seconds",
		Help:      "Wall-clock time spent inside a single NewOrder call.",
		Buckets:   prometheus.ExponentialBuckets(1e-7, 2, 20),
	})

	c.TradesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "artbook",
		Subsystem: "trades",
		Name:      "total",
		Help:      "Total number of trade events emitted.",
	})

	c.TradeVolume = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "artbook",
		Subsystem: "trades",
		Name:      "volume_total",
		Help:      "Total size filled across all trade events.",
	})

	c.BookDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "artbook",
		Subsystem: "book",
		Name:      "depth",
		Help:      "Number of distinct resting price levels, by side.",
	}, []string{"side"})

	c.SpreadTicks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "artbook",
		Subsystem: "book",
		Name:      "spread_ticks",
		Help:      "best_ask - best_bid in tick units; 0 when either side is empty.",
	})

	c.PoolHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artbook",
		Subsystem: "pool",
		Name:      "hits_total",
		Help:      "Node acquisitions served from a node variant's free list, by variant.",
	}, []string{"variant"})

	c.PoolMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artbook",
		Subsystem: "pool",
		Name:      "misses_total",
		Help:      "Node acquisitions that fell back to a fresh allocation, by variant.",
	}, []string{"variant"})

	return c
}

// Register adds every metric to reg. Tests that construct their own
// Collector (bypassing the singleton) should use a private registry to
// avoid collisions with other tests in the same process.
func (c *Collector) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		c.OrdersTotal, c.OrdersActive, c.RejectsTotal,
		c.MatchingLatency, c.TradesTotal, c.TradeVolume,
		c.BookDepth, c.SpreadTicks, c.PoolHits, c.PoolMisses,
	)
}

// poolObserver adapts a Collector into an art.PoolObserver so Book.New
// can wire node-pool hit/miss events into Prometheus without internal/art
// importing a metrics library itself.
type poolObserver struct {
	c *Collector
}

func (o poolObserver) ObserveHit(variant string)  { o.c.PoolHits.WithLabelValues(variant).Inc() }
func (o poolObserver) ObserveMiss(variant string) { o.c.PoolMisses.WithLabelValues(variant).Inc() }

var _ art.PoolObserver = poolObserver{}

// PrometheusSink adapts a Collector into an EventSink so a Book can be
// wired to report trade/reject counters without the matching core
// knowing about Prometheus at all.
type PrometheusSink struct {
	c *Collector
}

func NewPrometheusSink(c *Collector) *PrometheusSink { return &PrometheusSink{c: c} }

func (m *PrometheusSink) OnTrade(t Trade) {
	m.c.TradesTotal.Inc()
	m.c.TradeVolume.Add(float64(t.Size))
}

func (m *PrometheusSink) OnReject(r Reject) {
	m.c.RejectsTotal.WithLabelValues(r.Reason.String()).Inc()
}

// observeLatency records d against MatchingLatency; engine.go calls this
// once per NewOrder via time.Since.
func (c *Collector) observeLatency(d time.Duration) {
	c.MatchingLatency.Observe(d.Seconds())
}
