package calc

import "fmt"

// Kind selects which field of an Input is meaningful.
type Kind int

const (
	KindDigit Kind = iota + 1
	KindOperator
	KindFunction
	KindEquals
	KindMemory
)

func (k Kind) String() string {
	switch k {
	case KindDigit:
		return "digit"
	case KindOperator:
		return "operator"
	case KindFunction:
		return "function"
	case KindEquals:
		return "equals"
	case KindMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// Input is one token delivered to the calculator by a front end.
type Input struct {
	Kind  Kind
	Digit rune     // KindDigit: '0'–'9' or '.'
	Op    Operator // KindOperator
	Fn    Function // KindFunction
	Mem   MemoryOp // KindMemory
}

// Digit returns a digit (or decimal point) input.
func Digit(d rune) Input { return Input{Kind: KindDigit, Digit: d} }

// Op returns an operator input.
func Op(o Operator) Input { return Input{Kind: KindOperator, Op: o} }

// Fn returns a special-function input.
func Fn(f Function) Input { return Input{Kind: KindFunction, Fn: f} }

// Equals returns the evaluate input.
func Equals() Input { return Input{Kind: KindEquals} }

// Mem returns a memory-register input.
func Mem(m MemoryOp) Input { return Input{Kind: KindMemory, Mem: m} }

func (in Input) String() string {
	switch in.Kind {
	case KindDigit:
		return string(in.Digit)
	case KindOperator:
		return in.Op.String()
	case KindFunction:
		return in.Fn.String()
	case KindEquals:
		return "equals"
	case KindMemory:
		return in.Mem.String()
	default:
		return "unknown"
	}
}

// keyTable maps keyboard key names (as reported by a browser keydown event)
// to inputs. Digits and the decimal point are handled by ParseKey directly.
var keyTable = map[string]Input{
	"+":         Op(Add),
	"-":         Op(Subtract),
	"*":         Op(Multiply),
	"/":         Op(Divide),
	"%":         Op(Modulo),
	"Enter":     Equals(),
	"=":         Equals(),
	"Escape":    Fn(ClearAll),
	"Backspace": Fn(Backspace),
	"Delete":    Fn(ClearEntry),
}

// actionTable maps button action names and button labels to inputs.
// Note that the "%" button is the percent function, while the "%" key is the
// modulo operator.
var actionTable = map[string]Input{
	"decimal":     Digit('.'),
	"add":         Op(Add),
	"+":           Op(Add),
	"subtract":    Op(Subtract),
	"−":           Op(Subtract),
	"multiply":    Op(Multiply),
	"×":           Op(Multiply),
	"divide":      Op(Divide),
	"÷":           Op(Divide),
	"modulo":      Op(Modulo),
	"mod":         Op(Modulo),
	"equals":      Equals(),
	"=":           Equals(),
	"square":      Fn(Square),
	"x²":          Fn(Square),
	"sqrt":        Fn(SquareRoot),
	"√x":          Fn(SquareRoot),
	"reciprocal":  Fn(Reciprocal),
	"¹/x":         Fn(Reciprocal),
	"percent":     Fn(Percent),
	"%":           Fn(Percent),
	"sign":        Fn(Negate),
	"negate":      Fn(Negate),
	"±":           Fn(Negate),
	"backspace":   Fn(Backspace),
	"⌫":           Fn(Backspace),
	"clear-entry": Fn(ClearEntry),
	"CE":          Fn(ClearEntry),
	"clear":       Fn(ClearAll),
	"C":           Fn(ClearAll),
	"ms":          Mem(MemStore),
	"mr":          Mem(MemRecall),
	"m-plus":      Mem(MemAdd),
	"M+":          Mem(MemAdd),
	"m-minus":     Mem(MemSubtract),
	"M-":          Mem(MemSubtract),
	"mc":          Mem(MemClear),
}

// ParseKey maps a keyboard key to an input.
func ParseKey(key string) (Input, error) {
	if in, ok := parseDigit(key); ok {
		return in, nil
	}
	if in, ok := keyTable[key]; ok {
		return in, nil
	}
	return Input{}, fmt.Errorf("%w: key %q", ErrUnknownInput, key)
}

// ParseAction maps a button action name or label to an input.
func ParseAction(action string) (Input, error) {
	if in, ok := parseDigit(action); ok {
		return in, nil
	}
	if in, ok := actionTable[action]; ok {
		return in, nil
	}
	return Input{}, fmt.Errorf("%w: action %q", ErrUnknownInput, action)
}

func parseDigit(s string) (Input, bool) {
	if len(s) != 1 {
		return Input{}, false
	}
	c := s[0]
	if c == '.' || (c >= '0' && c <= '9') {
		return Digit(rune(c)), true
	}
	return Input{}, false
}
