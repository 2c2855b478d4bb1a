package calc

// Operator is a binary arithmetic operator. The zero value means no operator
// is pending.
type Operator int

const (
	OpNone Operator = iota
	Add
	Subtract
	Multiply
	Divide
	Modulo
)

// Valid reports whether o is one of the five arithmetic operators.
func (o Operator) Valid() bool {
	return o >= Add && o <= Modulo
}

// Symbol returns the display glyph used in expressions and history lines.
func (o Operator) Symbol() string {
	switch o {
	case Add:
		return "+"
	case Subtract:
		return "−"
	case Multiply:
		return "×"
	case Divide:
		return "÷"
	case Modulo:
		return "%"
	default:
		return ""
	}
}

func (o Operator) String() string {
	switch o {
	case OpNone:
		return "none"
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	case Modulo:
		return "modulo"
	default:
		return "unknown"
	}
}

// Function is a unary operation on the current input, or an editing command.
type Function int

const (
	Square Function = iota + 1
	SquareRoot
	Reciprocal
	Percent
	Negate
	Backspace
	ClearEntry
	ClearAll
)

// Numeric reports whether f computes a new value from the current input (as
// opposed to editing or clearing it). Numeric functions write a history line.
func (f Function) Numeric() bool {
	return f >= Square && f <= Negate
}

func (f Function) String() string {
	switch f {
	case Square:
		return "square"
	case SquareRoot:
		return "sqrt"
	case Reciprocal:
		return "reciprocal"
	case Percent:
		return "percent"
	case Negate:
		return "negate"
	case Backspace:
		return "backspace"
	case ClearEntry:
		return "clear-entry"
	case ClearAll:
		return "clear"
	default:
		return "unknown"
	}
}

// MemoryOp is an operation on the memory register.
type MemoryOp int

const (
	MemStore MemoryOp = iota + 1
	MemRecall
	MemAdd
	MemSubtract
	MemClear
)

func (m MemoryOp) String() string {
	switch m {
	case MemStore:
		return "ms"
	case MemRecall:
		return "mr"
	case MemAdd:
		return "m-plus"
	case MemSubtract:
		return "m-minus"
	case MemClear:
		return "mc"
	default:
		return "unknown"
	}
}
