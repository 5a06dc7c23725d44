// Package metrics exposes container counters as Prometheus gauges.
//
// The Collector reads each registered container when scraped, so values are
// never stale. Containers are not safe for concurrent use: scrape from the
// goroutine that owns them, or not at all while they are being mutated.
package metrics

import (
	"math"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/adt/internal/objpool"
)

// PoolSource is anything that reports object pool counters.
type PoolSource interface {
	Stats() objpool.Stats
}

// QueueSource is anything that reports a live count and a capacity.
type QueueSource interface {
	Size() int
	MaxSize() int
}

// Collector implements prometheus.Collector over named containers.
type Collector struct {
	mu     sync.Mutex
	pools  map[string]PoolSource
	queues map[string]QueueSource

	poolObjects     *prometheus.Desc
	poolMaxObjects  *prometheus.Desc
	poolFree        *prometheus.Desc
	poolInUse       *prometheus.Desc
	poolTombstones  *prometheus.Desc
	poolUtilization *prometheus.Desc
	queueSize       *prometheus.Desc
	queueCapacity   *prometheus.Desc
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	pool := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", name), help, []string{"pool"}, nil)
	}
	queue := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "queue", name), help, []string{"queue"}, nil)
	}

	return &Collector{
		pools:  map[string]PoolSource{},
		queues: map[string]QueueSource{},

		poolObjects:     pool("objects", "Instances tracked by the pool."),
		poolMaxObjects:  pool("max_objects", "Maximum instances the pool may build."),
		poolFree:        pool("free", "Instances ready for allocation."),
		poolInUse:       pool("in_use", "Instances currently allocated."),
		poolTombstones:  pool("tombstones", "Released slots awaiting compaction."),
		poolUtilization: pool("utilization", "Fraction of instances allocated."),
		queueSize:       queue("size", "Live elements in the queue."),
		queueCapacity:   queue("capacity", "Fixed capacity of the queue."),
	}
}

// AddPool registers a pool under name, replacing any previous one.
func (c *Collector) AddPool(name string, p PoolSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pools[name] = p
}

// AddQueue registers a queue under name, replacing any previous one.
func (c *Collector) AddQueue(name string, q QueueSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues[name] = q
}

// Remove unregisters name from both pools and queues.
func (c *Collector) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pools, name)
	delete(c.queues, name)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.poolObjects
	ch <- c.poolMaxObjects
	ch <- c.poolFree
	ch <- c.poolInUse
	ch <- c.poolTombstones
	ch <- c.poolUtilization
	ch <- c.queueSize
	ch <- c.queueCapacity
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range sortedKeys(c.pools) {
		s := c.pools[name].Stats()
		gauge := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, name)
		}
		gauge(c.poolObjects, float64(s.ObjectCount))
		gauge(c.poolMaxObjects, float64(s.MaxSize))
		gauge(c.poolFree, float64(s.Free))
		gauge(c.poolInUse, float64(s.InUse))
		gauge(c.poolTombstones, float64(s.Tombstones))
		gauge(c.poolUtilization, s.Utilization)
	}
	for _, name := range sortedKeys(c.queues) {
		q := c.queues[name]
		ch <- prometheus.MustNewConstMetric(c.queueSize, prometheus.GaugeValue, float64(q.Size()), name)
		ch <- prometheus.MustNewConstMetric(c.queueCapacity, prometheus.GaugeValue, float64(q.MaxSize()), name)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sample is one gathered gauge value.
type Sample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Gather collects every gauge from g, ordered by metric name and then label
// values as the gatherer returns them. Non-finite values, such as the
// utilization of an empty pool, are skipped since samples end up in JSON.
func Gather(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			gauge := m.GetGauge()
			if gauge == nil || math.IsNaN(gauge.GetValue()) || math.IsInf(gauge.GetValue(), 0) {
				continue
			}
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			out = append(out, Sample{
				Name:   mf.GetName(),
				Labels: labels,
				Value:  gauge.GetValue(),
			})
		}
	}
	return out, nil
}
