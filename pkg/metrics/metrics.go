package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts DESCRIBE exchanges by result and tracks their duration.
// It uses its own registry so a one-shot process can dump it to a textfile.
type Recorder struct {
	registry  *prometheus.Registry
	exchanges *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewRecorder creates a Recorder with freshly registered collectors
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{registry: reg}

	r.exchanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rtsp_describe_exchanges_total",
		Help: "Total number of authenticated DESCRIBE exchanges by result",
	}, []string{"result"})
	reg.MustRegister(r.exchanges)

	r.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rtsp_describe_exchange_duration_seconds",
		Help:    "Wall time of a DESCRIBE exchange, connect to final response",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})
	reg.MustRegister(r.duration)

	return r
}

// ObserveExchange records one exchange outcome
func (r *Recorder) ObserveExchange(result string, duration time.Duration) {
	r.exchanges.WithLabelValues(result).Inc()
	r.duration.Observe(duration.Seconds())
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics in the Prometheus text format, for the
// node_exporter textfile collector
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
