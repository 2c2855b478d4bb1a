// Package types defines the JSON shapes shared by the calculator package, the
// server and the terminal front end. They are the canonical wire
// representations of a calculator view and of a stored note.
package types
