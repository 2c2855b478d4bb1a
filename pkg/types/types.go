package types

import "time"

// CalculatorView is the rendered state of one calculator, as consumed by a
// display: the formatted current value, the raw literal being typed, the
// pending expression, the memory register and the calculation history.
type CalculatorView struct {
	Display    string `json:"display"`
	Input      string `json:"input"`
	Expression string `json:"expression,omitempty"`
	State      string `json:"state"`

	// Memory is the raw register value. MemoryDisplay is empty when nothing
	// is stored (register is zero).
	Memory        float64 `json:"memory"`
	MemoryDisplay string  `json:"memory_display,omitempty"`

	// History lists completed calculations, oldest first.
	History []string `json:"history"`
}

// Note is one entry of the notes panel. The JSON field names match the
// stored document format: a list of {id, title, content, lastModified}.
type Note struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	LastModified time.Time `json:"lastModified"`
}
