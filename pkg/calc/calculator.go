package calc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quickcalc/quickcalc/pkg/types"
)

// Default values applied when Options fields are zero.
const (
	DefaultMaxInputLength = 16
	DefaultHistoryLimit   = 100
)

// Options tunes a Calculator. Zero fields take the defaults above.
type Options struct {
	// MaxInputLength caps the number of characters in the literal being
	// typed. A leading minus sign is not counted.
	MaxInputLength int

	// HistoryLimit caps the history; the oldest line is dropped first.
	HistoryLimit int
}

// State is the coarse state of the machine, derived from its fields.
type State int

const (
	StateEntry State = iota
	StateOperatorPending
	StateResult
)

func (s State) String() string {
	switch s {
	case StateEntry:
		return "entry"
	case StateOperatorPending:
		return "operator_pending"
	case StateResult:
		return "result"
	default:
		return "unknown"
	}
}

// Calculator owns the input literal, the operand awaiting an operator, the
// pending operator, the memory register and the history.
type Calculator struct {
	opts Options

	current   string
	previous  string
	pending   Operator
	resetNext bool

	// operand is set once current holds a right-hand operand for the pending
	// operator: typed digits, a unary result, a memory recall or a cleared
	// entry. Choosing an operator clears it.
	operand bool

	memory  float64
	history []string
}

// New returns a Calculator in its initial state: input "0", empty memory and
// history.
func New(opts Options) *Calculator {
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Calculator{opts: opts, current: "0"}
}

// Apply dispatches one input to the matching transition.
func (c *Calculator) Apply(in Input) error {
	switch in.Kind {
	case KindDigit:
		return c.EnterDigit(in.Digit)
	case KindOperator:
		return c.ChooseOperator(in.Op)
	case KindFunction:
		return c.SpecialFunction(in.Fn)
	case KindEquals:
		return c.Evaluate()
	case KindMemory:
		return c.applyMemory(in.Mem)
	default:
		return fmt.Errorf("%w: kind %d", ErrUnknownInput, int(in.Kind))
	}
}

// EnterDigit appends d ('0'–'9' or '.') to the current input. A second
// decimal point and characters beyond MaxInputLength (sign excluded) are
// ignored. A leading zero is replaced unless d is the decimal point.
func (c *Calculator) EnterDigit(d rune) error {
	if d != '.' && (d < '0' || d > '9') {
		return fmt.Errorf("%w: %q", ErrInvalidDigit, d)
	}
	if c.resetNext {
		c.current = "0"
		c.resetNext = false
	}
	c.operand = true

	switch {
	case d == '.':
		if strings.Contains(c.current, ".") {
			return nil
		}
	case c.current == "0":
		c.current = string(d)
		return nil
	case c.current == "-0":
		c.current = "-" + string(d)
		return nil
	}

	if len(strings.TrimPrefix(c.current, "-")) >= c.opts.MaxInputLength {
		return nil
	}
	c.current += string(d)
	return nil
}

// ChooseOperator sets the pending operator. If an operator is already pending
// and a second operand has been entered, that operation is evaluated first,
// so chains run left to right without precedence. Choosing an operator again
// before any operand replaces the pending one and keeps the left operand.
func (c *Calculator) ChooseOperator(op Operator) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownOperator, int(op))
	}
	if c.pending != OpNone {
		if !c.operand {
			c.pending = op
			return nil
		}
		if err := c.Evaluate(); err != nil {
			return err
		}
	}
	c.previous = c.current
	c.pending = op
	c.resetNext = true
	c.operand = false
	return nil
}

// Evaluate applies the pending operator to the stored operand and the current
// input. It is a no-op unless an operator is pending, its left operand is
// stored and a second operand has been entered.
func (c *Calculator) Evaluate() error {
	if c.pending == OpNone || c.previous == "" || !c.operand {
		return nil
	}
	a, b := parseLiteral(c.previous), c.value()

	r, err := Compute(c.pending, a, b)
	if err != nil {
		return err
	}

	c.record(fmt.Sprintf("%s %s %s = %s",
		FormatForDisplay(a), c.pending.Symbol(), FormatForDisplay(b), FormatForDisplay(r)))

	c.current = literal(r)
	c.previous = ""
	c.pending = OpNone
	c.resetNext = true
	c.operand = false
	return nil
}

// SpecialFunction applies a unary function or editing command to the current
// input.
func (c *Calculator) SpecialFunction(fn Function) error {
	switch fn {
	case Square, SquareRoot, Reciprocal, Percent:
		x := c.value()
		r, err := ComputeUnary(fn, x)
		if err != nil {
			return err
		}
		c.record(unaryLine(fn, x, r))
		c.current = literal(r)
		c.resetNext = true
		c.operand = true

	case Negate:
		// With an operator pending, current still mirrors the left operand
		// until a second one is entered; there is nothing to negate yet.
		if c.pending != OpNone && !c.operand {
			return nil
		}
		x := c.value()
		if x == 0 {
			return nil
		}
		c.record(unaryLine(fn, x, -x))
		if strings.HasPrefix(c.current, "-") {
			c.current = c.current[1:]
		} else {
			c.current = "-" + c.current
		}

	case Backspace:
		// A result or a just-chosen operand is not being edited.
		if c.resetNext {
			return nil
		}
		s := c.current[:len(c.current)-1]
		if s == "" || s == "-" || s == "-0" {
			s = "0"
		}
		c.current = s

	case ClearEntry:
		c.current = "0"
		c.resetNext = false
		c.operand = true

	case ClearAll:
		c.current = "0"
		c.previous = ""
		c.pending = OpNone
		c.resetNext = false
		c.operand = false
		c.history = nil

	default:
		return fmt.Errorf("%w: %d", ErrUnknownFunction, int(fn))
	}
	return nil
}

// MemoryStore copies the current input into the memory register.
func (c *Calculator) MemoryStore() {
	c.memory = c.value()
}

// MemoryRecall copies the memory register into the current input. The next
// digit starts a fresh number.
func (c *Calculator) MemoryRecall() {
	c.current = literal(c.memory)
	c.resetNext = true
	c.operand = true
}

// MemoryAdd adds the current input to the memory register.
func (c *Calculator) MemoryAdd() error {
	r, err := Compute(Add, c.memory, c.value())
	if err != nil {
		return err
	}
	c.memory = r
	return nil
}

// MemorySubtract subtracts the current input from the memory register.
func (c *Calculator) MemorySubtract() error {
	r, err := Compute(Subtract, c.memory, c.value())
	if err != nil {
		return err
	}
	c.memory = r
	return nil
}

// MemoryClear zeroes the memory register.
func (c *Calculator) MemoryClear() {
	c.memory = 0
}

func (c *Calculator) applyMemory(m MemoryOp) error {
	switch m {
	case MemStore:
		c.MemoryStore()
	case MemRecall:
		c.MemoryRecall()
	case MemAdd:
		return c.MemoryAdd()
	case MemSubtract:
		return c.MemorySubtract()
	case MemClear:
		c.MemoryClear()
	default:
		return fmt.Errorf("%w: memory op %d", ErrUnknownFunction, int(m))
	}
	return nil
}

// Current returns the raw literal being typed (or the last result).
func (c *Calculator) Current() string { return c.current }

// Display returns the current input formatted for a display.
func (c *Calculator) Display() string { return FormatLiteral(c.current) }

// Expression returns the pending left operand and operator ("12 +"), or ""
// when no operator is pending.
func (c *Calculator) Expression() string {
	if c.pending == OpNone {
		return ""
	}
	return FormatForDisplay(parseLiteral(c.previous)) + " " + c.pending.Symbol()
}

// Pending returns the pending operator, OpNone if there is none.
func (c *Calculator) Pending() Operator { return c.pending }

// Memory returns the memory register.
func (c *Calculator) Memory() float64 { return c.memory }

// History returns a copy of the completed-calculation lines, oldest first.
func (c *Calculator) History() []string {
	out := make([]string, len(c.history))
	copy(out, c.history)
	return out
}

// State reports which state the machine is in.
func (c *Calculator) State() State {
	switch {
	case c.pending != OpNone && !c.operand:
		return StateOperatorPending
	case c.pending == OpNone && c.resetNext:
		return StateResult
	default:
		return StateEntry
	}
}

// Snapshot renders the calculator for a display.
func (c *Calculator) Snapshot() types.CalculatorView {
	v := types.CalculatorView{
		Display:    c.Display(),
		Input:      c.current,
		Expression: c.Expression(),
		State:      c.State().String(),
		Memory:     c.memory,
		History:    c.History(),
	}
	if c.memory != 0 {
		v.MemoryDisplay = FormatForDisplay(c.memory)
	}
	return v
}

func (c *Calculator) record(line string) {
	c.history = append(c.history, line)
	if over := len(c.history) - c.opts.HistoryLimit; over > 0 {
		c.history = append(c.history[:0:0], c.history[over:]...)
	}
}

func (c *Calculator) value() float64 {
	return parseLiteral(c.current)
}

// parseLiteral parses an input literal. Literals are kept valid by the
// transitions, so a parse failure can only mean an empty operand.
func parseLiteral(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func unaryLine(fn Function, x, r float64) string {
	xs, rs := FormatForDisplay(x), FormatForDisplay(r)
	switch fn {
	case Square:
		return fmt.Sprintf("sqr(%s) = %s", xs, rs)
	case SquareRoot:
		return fmt.Sprintf("√(%s) = %s", xs, rs)
	case Reciprocal:
		return fmt.Sprintf("1/(%s) = %s", xs, rs)
	case Percent:
		return fmt.Sprintf("%s%% = %s", xs, rs)
	default:
		return fmt.Sprintf("%s(%s) = %s", fn, xs, rs)
	}
}
