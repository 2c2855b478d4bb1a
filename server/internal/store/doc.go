// Package store holds the server's calculator sessions. Each session owns
// one calc.Calculator; the store is a thread-safe map keyed by session id
// with TTL eviction of idle sessions.
package store
