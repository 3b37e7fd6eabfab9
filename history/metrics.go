package history

import "github.com/prometheus/client_golang/prometheus"

// PrometheusCollector exposes an Engine's cumulative recorded/dropped
// counts via a ConstMetrics-on-scrape collector, narrowed to the two
// counters a history engine actually tracks.
type PrometheusCollector struct {
	engine       *Engine
	recordedDesc *prometheus.Desc
	droppedDesc  *prometheus.Desc
}

// NewPrometheusCollector builds a collector for engine. namespace defaults
// to "eventhub_history" when empty.
func NewPrometheusCollector(engine *Engine, namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = "eventhub_history"
	}
	return &PrometheusCollector{
		engine: engine,
		recordedDesc: prometheus.NewDesc(
			namespace+"_recorded_total",
			"Total events recorded by the history collaborator",
			nil, nil,
		),
		droppedDesc: prometheus.NewDesc(
			namespace+"_dropped_total",
			"Total events the history collaborator failed to record",
			nil, nil,
		),
	}
}

func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.recordedDesc
	ch <- c.droppedDesc
}

func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	recorded, dropped := c.engine.Stats()
	ch <- prometheus.MustNewConstMetric(c.recordedDesc, prometheus.CounterValue, float64(recorded))
	ch <- prometheus.MustNewConstMetric(c.droppedDesc, prometheus.CounterValue, float64(dropped))
}
