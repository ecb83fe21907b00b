// Package metrics exports pool and executor statistics in the Prometheus
// exposition format.
package metrics
