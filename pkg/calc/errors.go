package calc

import "errors"

// Sentinel errors returned by calculator transitions. Match with errors.Is.
var (
	ErrDivisionByZero    = errors.New("division by zero")
	ErrInvalidSquareRoot = errors.New("invalid input for square root")
	ErrReciprocalOfZero  = errors.New("reciprocal of zero")
	ErrUnknownOperator   = errors.New("unknown operator")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrUnknownInput      = errors.New("unknown input")
	ErrInvalidDigit      = errors.New("invalid digit")
	ErrOutOfRange        = errors.New("result out of range")
)

// ErrorKind returns a short snake_case label for err, suitable for metric
// labels and log attributes. Errors that are not calculator errors map to
// "other".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrInvalidSquareRoot):
		return "invalid_square_root"
	case errors.Is(err, ErrReciprocalOfZero):
		return "reciprocal_of_zero"
	case errors.Is(err, ErrUnknownOperator):
		return "unknown_operator"
	case errors.Is(err, ErrUnknownFunction):
		return "unknown_function"
	case errors.Is(err, ErrUnknownInput):
		return "unknown_input"
	case errors.Is(err, ErrInvalidDigit):
		return "invalid_digit"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	default:
		return "other"
	}
}

// IsCalcError reports whether err is one of the calculator's sentinel errors.
func IsCalcError(err error) bool {
	return err != nil && ErrorKind(err) != "other"
}
