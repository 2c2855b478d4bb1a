// Package kv provides the small key-value storage abstraction the notes
// repository persists through. It plays the role browser localStorage and
// sessionStorage play for the web front end.
//
// Store has three methods: Get, Set and Delete. Values are opaque bytes.
//
// Implementations:
//   - FileStore: one file per key in a directory; writes go to a temp file
//     and are renamed into place so readers never see a partial value
//   - MemoryStore: a mutex-guarded map, used for the session-scoped backup
//     copy and in tests
package kv
