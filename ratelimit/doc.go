// Package ratelimit bounds the number of accepted tool calls per client
// within a trailing time window.
//
// The limiter is a pure admission check: rejected calls are never queued or
// retried, and a rejection does not consume window capacity. It runs before
// (and independently of) authentication.
package ratelimit
