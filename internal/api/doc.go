// Package api hosts the HTTP server, middleware, and handlers for the album
// scraping service. Notable routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /scrape?url=<album> returning the album's photo records as JSON,
//     served through the TTL cache and guarded by the API key header.
package api
