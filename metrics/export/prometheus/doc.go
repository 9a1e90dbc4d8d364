// Package prometheus renders goGate engine metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] wraps an [goGate.Engine] and its Handler serves
// gogate_*_total counters, the gogate_resolve_latency_seconds histogram and
// gogate_audit_dropped_total. Nothing is registered in a global registry;
// callers mount the Handler themselves.
package prometheus
