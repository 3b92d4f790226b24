package generator

import "time"

// MetricsRecorder receives build counters. Implementations must be cheap;
// they are called once per generated output.
type MetricsRecorder interface {
	DocumentGenerated(format string)
	IndexGenerated(format, kind, output string)
	ConversionFailed(format string)
	BuildCompleted(format string, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) DocumentGenerated(string)              {}
func (noopMetrics) IndexGenerated(string, string, string) {}
func (noopMetrics) ConversionFailed(string)               {}
func (noopMetrics) BuildCompleted(string, time.Duration)  {}
