package metrics

import (
	"cruise-status-service/internal/domain"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Computations    prometheus.Counter
	ComputeDuration prometheus.Histogram
	ShipsByStatus   *prometheus.GaugeVec // status label: AtPort|InTransit|Completed|Unknown

	ZoneLookups *prometheus.CounterVec // result label: hit|miss|error
	ZoneCache   *prometheus.CounterVec // result label: hit|miss

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Computations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cruise_status_computations_total",
			Help: "Total fleet status computations.",
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cruise_status_compute_duration_seconds",
			Help:    "Duration of fleet status computations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		ShipsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cruise_status_ships",
			Help: "Ships per status in the latest computation.",
		}, []string{"status"}),
		ZoneLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cruise_status_zone_lookups_total",
			Help: "External zone lookups by result.",
		}, []string{"result"}),
		ZoneCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cruise_status_zone_cache_total",
			Help: "Zone cache reads by result.",
		}, []string{"result"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cruise_status_nats_published_total",
			Help: "Total NATS status messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cruise_status_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cruise_status_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		c.Computations, c.ComputeDuration, c.ShipsByStatus,
		c.ZoneLookups, c.ZoneCache,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

var statusTags = []domain.StatusTag{
	domain.StatusAtPort,
	domain.StatusInTransit,
	domain.StatusCompleted,
	domain.StatusUnknown,
}

func (c *Collector) ObserveComputation(d time.Duration, statuses []domain.StatusRecord) {
	c.Computations.Inc()
	c.ComputeDuration.Observe(d.Seconds())

	counts := make(map[domain.StatusTag]int, len(statusTags))
	for _, s := range statuses {
		counts[s.Tag]++
	}
	for _, tag := range statusTags {
		c.ShipsByStatus.WithLabelValues(string(tag)).Set(float64(counts[tag]))
	}
}

func (c *Collector) ZoneLookupObserve(result string) {
	c.ZoneLookups.WithLabelValues(result).Inc()
}

func (c *Collector) ZoneCacheObserve(hit bool) {
	if hit {
		c.ZoneCache.WithLabelValues("hit").Inc()
		return
	}
	c.ZoneCache.WithLabelValues("miss").Inc()
}

func (c *Collector) NATSPublishedInc()  { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc() { c.NATSPublishErrs.Inc() }

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
		return
	}
	c.NATSConnected.Set(0)
}
