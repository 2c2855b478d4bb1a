package calc

import (
	"fmt"
	"math"
	"strconv"
)

// Precision is the number of fractional digits every result is rounded to.
const Precision = 8

// Compute applies op to a and b and rounds the result to Precision digits.
// Division and modulo by zero fail with ErrDivisionByZero; a non-finite
// result fails with ErrOutOfRange.
func Compute(op Operator, a, b float64) (float64, error) {
	var r float64
	switch op {
	case Add:
		r = a + b
	case Subtract:
		r = a - b
	case Multiply:
		r = a * b
	case Divide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		r = a / b
	case Modulo:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		r = math.Mod(a, b)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownOperator, int(op))
	}
	return finish(r)
}

// ComputeUnary applies a numeric Function to x and rounds the result.
func ComputeUnary(fn Function, x float64) (float64, error) {
	var r float64
	switch fn {
	case Square:
		r = x * x
	case SquareRoot:
		if x < 0 {
			return 0, ErrInvalidSquareRoot
		}
		r = math.Sqrt(x)
	case Reciprocal:
		if x == 0 {
			return 0, ErrReciprocalOfZero
		}
		r = 1 / x
	case Percent:
		r = x / 100
	case Negate:
		r = -x
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownFunction, int(fn))
	}
	return finish(r)
}

// Round rounds x to Precision fractional digits. Negative zero becomes zero.
func Round(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', Precision, 64), 64)
	if err != nil {
		return x
	}
	if r == 0 {
		return 0
	}
	return r
}

func finish(r float64) (float64, error) {
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0, ErrOutOfRange
	}
	return Round(r), nil
}

// literal renders v as a plain decimal literal (no grouping, no exponent).
func literal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
