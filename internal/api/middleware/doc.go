// Package middleware provides the gin middleware of the package service:
// request ids, access logging, CORS and rate limiting.
package middleware
