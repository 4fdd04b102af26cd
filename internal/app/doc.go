// Package app assembles the server: configuration, logging,
// observability, services, router, and the HTTP server lifecycle.
package app
