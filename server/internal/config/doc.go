// Package config loads and watches the quickcalc-server configuration file
// (config.yaml).
//
// Config fields:
//   - Server.HTTPPort           : port for the REST API and WebSocket hub (default 8080)
//   - Server.Auth.Mode          : "apikey" or "none"
//   - Server.Auth.KeyEnv        : environment variable holding the expected API key
//   - Server.Auth.Header        : HTTP header name (default "X-API-Key")
//   - Server.SessionTTL         : idle calculator session lifetime (default 30m)
//   - Calculator.MaxInputLength : characters accepted while typing (default 16)
//   - Calculator.HistoryLimit   : history lines kept per session (default 100)
//   - Notes.Dir                 : directory of the notes key-value store (default "data")
//   - Notes.AutosaveDelay       : debounce before an auto-save (default 1s)
//   - Log.Level                 : debug | info | warn | error (default info)
//
// Load(path) applies defaults before unmarshalling, then validates.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create pattern
// used by atomic-save editors (vim, VS Code) by re-adding the watch after
// each event.
package config
