// Package httpserver provides the HTTP/HTTPS server for Dew.
//
// Routes:
//
//   - Todo endpoints: /api/v1/todos, /api/v1/todos/{id}/status|title,
//     /api/v1/todos/completed, /api/v1/generation
//   - Admin endpoints: /admin/v1/snapshot, /admin/v1/status
//   - Health endpoints: /health, /ready, /metrics
//
// Middleware chain for API routes, outermost first:
// Recover, RequestID, CORS, RateLimit, Metrics, Audit.
// /metrics skips rate limiting and auditing.
package httpserver
