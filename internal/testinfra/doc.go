// Package testinfra starts disposable PostgreSQL containers and generates
// TLS material for integration tests of the connection pool and connectors.
package testinfra
