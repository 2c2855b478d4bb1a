// Package calc implements the calculator state machine: numeric entry,
// left-to-right operator chaining, unary functions, a memory register, a
// calculation history and display formatting.
//
// States:
//   - Entry: digits are accumulated into the current literal
//   - OperatorPending: an operator was chosen; the next digit starts the
//     second operand
//   - Result: an equals (or unary function, or memory recall) produced a
//     value; the next digit starts a fresh number
//
// Inputs are a closed set. Input{Kind, Digit, Op, Fn, Mem} is dispatched by
// Calculator.Apply; ParseKey maps keyboard keys and ParseAction maps button
// names/labels onto inputs.
//
// Arithmetic results are rounded to Precision (8) fractional digits to
// suppress binary floating-point noise. FormatForDisplay inserts thousands
// separators, truncates the fraction to 8 digits, and switches to exponential
// notation once the plain rendering exceeds MaxDisplayLength characters.
//
// Error policy: a failing transition returns one of the sentinel errors
// (ErrDivisionByZero, ErrInvalidSquareRoot, ErrReciprocalOfZero, ...) and
// leaves the calculator exactly as it was. Callers surface the error as a
// notification; the machine stays usable.
//
// A Calculator is not safe for concurrent use. Callers that share one across
// goroutines must serialise access.
package calc
