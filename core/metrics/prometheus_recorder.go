package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	references    *prom.CounterVec
	resolutions   *prom.CounterVec
	topics        *prom.CounterVec
	stageDuration *prom.HistogramVec
	unitOutcome   *prom.CounterVec
}

// NewPrometheusRecorder creates the metrics and registers them with reg. A
// nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		references: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "flaremd",
			Name:      "references_total",
			Help:      "Link references seen during rewriting, by family and outcome",
		}, []string{"family", "outcome"}),
		resolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "flaremd",
			Name:      "subfolder_resolutions_total",
			Help:      "Merged subfolder resolutions by the step that produced them",
		}, []string{"source"}),
		topics: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "flaremd",
			Name:      "topics_converted_total",
			Help:      "HTML topics converted to Markdown",
		}, []string{"result"}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "flaremd",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		unitOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "flaremd",
			Name:      "unit_outcomes_total",
			Help:      "Documentation unit conversions by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.references, pr.resolutions, pr.topics, pr.stageDuration, pr.unitOutcome)
	return pr
}

func (p *PrometheusRecorder) IncReference(family string, outcome Outcome) {
	if p == nil {
		return
	}
	p.references.WithLabelValues(family, string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncSubfolderResolution(source string) {
	if p == nil {
		return
	}
	p.resolutions.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) IncTopicConverted(success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.topics.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncUnitOutcome(outcome string) {
	if p == nil {
		return
	}
	p.unitOutcome.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the registry in the text exposition format for the
// node exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
