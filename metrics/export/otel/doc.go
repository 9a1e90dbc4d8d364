// Package otel exposes goGate engine metrics through an OpenTelemetry meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per engine counter
// and one Int64ObservableGauge per latency bucket. A single callback reads
// [goGate.Engine.MetricsSnapshot] on each collection. Callers own the
// MeterProvider.
package otel
