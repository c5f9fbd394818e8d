// Package middleware holds the global and route-specific Echo middleware:
// authentication and role guards, request ids, request-scoped logging,
// New Relic tracing, rate limiting and the global error handler.
package middleware
