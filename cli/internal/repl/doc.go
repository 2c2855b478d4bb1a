// Package repl drives one calculator from line-oriented text input.
//
// Each whitespace-separated token on a line is one key, named the way
// calc.ParseKey names keys ("7", ".", "+", "Enter", "Escape", "Backspace").
// A token prefixed with @ is a button action ("@sqrt", "@ms", "@m-plus").
// A token that is neither is split into single-character keys, so "12+3="
// works as well as "1 2 + 3 =".
//
// Line commands: history, help, quit (or exit).
//
// After every line the REPL prints the pending expression and the display,
// marked with M when the memory register is non-zero. A rejected input prints
// "error: <message>", skips the rest of the line and leaves the calculator
// usable.
package repl
