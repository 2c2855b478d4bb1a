package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/quickcalc/quickcalc/pkg/calc"
)

// ActionPrefix marks a token as a button action rather than a key.
const ActionPrefix = "@"

// ErrQuit is returned by Line when the user asked to leave.
var ErrQuit = errors.New("repl: quit")

const helpText = `keys:     0-9 . + - * / % = Enter Escape Backspace Delete
actions:  @square @sqrt @reciprocal @percent @negate @ms @mr @m-plus @m-minus @mc @CE @C
commands: history, help, quit
`

// REPL feeds tokens to a calculator and renders it to out.
type REPL struct {
	calc *calc.Calculator
	out  io.Writer
}

// New returns a REPL driving c and writing to out.
func New(c *calc.Calculator, out io.Writer) *REPL {
	return &REPL{calc: c, out: out}
}

// Run reads lines from in until EOF, a quit command or ctx is cancelled.
// Cancellation is noticed between lines.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if err := r.Line(sc.Text()); errors.Is(err, ErrQuit) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("repl: read input: %w", err)
	}
	return nil
}

// Line processes one line of input and prints the result. It returns ErrQuit
// for the quit command and the calculator error, if any, after printing it.
func (r *REPL) Line(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 1 {
		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return ErrQuit
		case "help":
			fmt.Fprint(r.out, helpText)
			return nil
		case "history":
			r.printHistory()
			return nil
		}
	}

	var lineErr error
	for _, tok := range fields {
		if err := r.token(tok); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			lineErr = err
			break
		}
	}
	if len(fields) > 0 {
		r.render()
	}
	return lineErr
}

// token applies one token, splitting it into single-character keys when it
// is not a key name itself.
func (r *REPL) token(tok string) error {
	if name, ok := strings.CutPrefix(tok, ActionPrefix); ok && name != "" {
		in, err := calc.ParseAction(name)
		if err != nil {
			return err
		}
		return r.apply(in)
	}

	if in, err := calc.ParseKey(tok); err == nil {
		return r.apply(in)
	}
	for _, ch := range tok {
		in, err := calc.ParseKey(string(ch))
		if err != nil {
			return fmt.Errorf("%w: %q", calc.ErrUnknownInput, tok)
		}
		if err := r.apply(in); err != nil {
			return err
		}
	}
	return nil
}

func (r *REPL) apply(in calc.Input) error {
	err := r.calc.Apply(in)
	slog.Debug("repl: input", "input", in.String(), "display", r.calc.Display(), "err", err)
	return err
}

func (r *REPL) render() {
	v := r.calc.Snapshot()
	marker := "  "
	if v.MemoryDisplay != "" {
		marker = "M "
	}
	line := v.Display
	if v.Expression != "" {
		line = v.Expression + " " + v.Display
	}
	fmt.Fprintf(r.out, "%s%s\n", marker, line)
}

func (r *REPL) printHistory() {
	h := r.calc.History()
	if len(h) == 0 {
		fmt.Fprintln(r.out, "(no history)")
		return
	}
	for i, entry := range h {
		fmt.Fprintf(r.out, "%3d  %s\n", i+1, entry)
	}
}
