// Package metrics exposes conversion counters through a Recorder interface.
//
// Components default to NoopRecorder. The CLI swaps in a PrometheusRecorder
// when --metrics-textfile is set and writes the registry once the run ends.
package metrics

import "time"

// Outcome labels what happened to one link reference.
type Outcome string

const (
	OutcomeRewritten Outcome = "rewritten"
	OutcomeMalformed Outcome = "malformed"
	OutcomeSkipped   Outcome = "skipped"
)

// Recorder receives conversion metrics.
type Recorder interface {
	IncReference(family string, outcome Outcome)
	IncSubfolderResolution(source string)
	IncTopicConverted(success bool)
	ObserveStageDuration(stage string, d time.Duration)
	IncUnitOutcome(outcome string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) IncReference(string, Outcome)               {}
func (NoopRecorder) IncSubfolderResolution(string)              {}
func (NoopRecorder) IncTopicConverted(bool)                     {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncUnitOutcome(string)                      {}
