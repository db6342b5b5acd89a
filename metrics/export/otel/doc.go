// Package otel publishes classAuth engine metrics through an OpenTelemetry
// Meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per engine counter
// and one Int64ObservableGauge per histogram bucket. A single callback reads
// [classAuth.Engine.MetricsSnapshot] on each collection cycle. Callers own
// the MeterProvider.
package otel
