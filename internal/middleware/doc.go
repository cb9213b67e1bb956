// Package middleware provides HTTP middleware for the metrics endpoint.
//
// [Logger] writes one W3C Extended Log Format line per request at debug
// level, so scrapes are visible with LOG_LEVEL=debug and silent otherwise.
package middleware
