// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package metrics exports the telemetry data of extractions as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/hashicorp/go-unarchive"
	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes all metric names.
const namespace = "unarchive"

// Collector holds the Prometheus metrics of extractions.
type Collector struct {
	extractions *prometheus.CounterVec
	entries     *prometheus.CounterVec
	bytes       prometheus.Counter
	inputBytes  prometheus.Counter
	warnings    prometheus.Counter
	duration    prometheus.Histogram
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "The number of extractions by archive type and result",
		}, []string{"type", "result"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "The number of archive entries by kind",
		}, []string{"kind"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_bytes_total",
			Help:      "The number of bytes written to disk",
		}),
		inputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "The size of all extracted archives",
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "The number of warnings reported during extractions",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "The duration of extractions",
			// use prometheus.DefBuckets which is
			// []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
		}),
	}

	for _, m := range []prometheus.Collector{c.extractions, c.entries, c.bytes, c.inputBytes, c.warnings, c.duration} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observe adds the telemetry data of one extraction.
func (c *Collector) Observe(td *unarchive.TelemetryData) {
	result := "ok"
	if td.ExtractionErrors > 0 {
		result = "error"
	}
	extractedType := td.ExtractedType
	if extractedType == "" {
		extractedType = "unknown"
	}

	c.extractions.WithLabelValues(extractedType, result).Inc()
	c.entries.WithLabelValues("file").Add(float64(td.ExtractedFiles))
	c.entries.WithLabelValues("dir").Add(float64(td.ExtractedDirs))
	c.entries.WithLabelValues("symlink").Add(float64(td.ExtractedSymlinks))
	c.entries.WithLabelValues("filtered").Add(float64(td.FilteredEntries))
	c.entries.WithLabelValues("unsupported").Add(float64(td.UnsupportedFiles))
	c.bytes.Add(float64(td.ExtractionSize))
	c.inputBytes.Add(float64(td.InputSize))
	c.warnings.Add(float64(td.Warnings))
	c.duration.Observe(td.ExtractionDuration.Seconds())
}

// Hook returns a [unarchive.TelemetryHook] that observes every extraction.
func (c *Collector) Hook() unarchive.TelemetryHook {
	return func(_ context.Context, td *unarchive.TelemetryData) {
		c.Observe(td)
	}
}

// WriteTextfile writes all metrics of g to path in the text exposition format,
// e.g. for the textfile collector of the node exporter.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
