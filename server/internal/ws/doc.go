// Package ws implements the WebSocket hub for quickcalc-server.
//
// Hub keeps the connected clients of every calculator session and pushes the
// session's calculator view to all of them whenever an input is applied,
// whether it arrived over this socket, another socket or the REST API.
//
// New(sessions, metrics) creates a Hub.
// Hub.Run(ctx) fans out published views; blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades GET /ws/sessions/{id}, sends the current view
// immediately on connect, then applies input frames read from the client.
//
// Frames read from clients (same shape as the REST input body):
//
//	{"key": "7"}  or  {"action": "sqrt"}
//
// Message format sent to clients:
//
//	{
//	  "event": "calculator",
//	  "data":  { /* CalculatorView */ },
//	  "error": "division by zero"   // only when the input was rejected
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level.
package ws
