// Package prometheus renders classAuth engine metrics in the Prometheus
// text exposition format.
//
// [NewPrometheusExporter] reads [classAuth.Engine.MetricsSnapshot] on every
// scrape. Counter names are prefixed classauth_ and end in _total; the single
// histogram is classauth_authenticate_latency_seconds.
//
// Nothing is registered in a global registry. Callers mount [PrometheusExporter.Handler].
package prometheus
