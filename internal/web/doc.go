// Package web serves the browser surface: a single page with a URL field and
// a question field, JSON endpoints for scripts, a health check, and
// Prometheus metrics.
//
// Each browser is assigned a random session through a cookie, so concurrent
// users never read or overwrite each other's transcripts.
package web
