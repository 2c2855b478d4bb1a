package calc

import (
	"errors"
	"strconv"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		op   Operator
		a, b float64
		want float64
	}{
		{Add, 5, 3, 8},
		{Subtract, 10, 4, 6},
		{Multiply, 6, 7, 42},
		{Divide, 15, 3, 5},
		{Divide, 10, 3, 3.33333333},
		{Modulo, 10, 3, 1},
		{Modulo, -7, 3, -1},
		{Add, 0.1, 0.2, 0.3},
		{Multiply, 1.1, 1.1, 1.21},
		{Subtract, 0.3, 0.3, 0},
	}
	for _, tc := range tests {
		got, err := Compute(tc.op, tc.a, tc.b)
		if err != nil {
			t.Errorf("Compute(%v, %v, %v): unexpected error %v", tc.op, tc.a, tc.b, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Compute(%v, %v, %v): got %v, want %v", tc.op, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompute_Errors(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
		a, b float64
		want error
	}{
		{"divide by zero", Divide, 1, 0, ErrDivisionByZero},
		{"modulo by zero", Modulo, 1, 0, ErrDivisionByZero},
		{"overflow", Multiply, 1e308, 10, ErrOutOfRange},
		{"unknown", Operator(9), 1, 1, ErrUnknownOperator},
		{"none", OpNone, 1, 1, ErrUnknownOperator},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.op, tc.a, tc.b)
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

// Choosing an operator and evaluating must reproduce a direct Compute call.
func TestEvaluate_MatchesCompute(t *testing.T) {
	operands := []string{"0", "1", "7", "12.5", "0.1", "999999", "3.14159265"}
	ops := []Operator{Add, Subtract, Multiply, Divide, Modulo}

	for _, op := range ops {
		for _, a := range operands {
			for _, b := range operands {
				av, _ := strconv.ParseFloat(a, 64)
				bv, _ := strconv.ParseFloat(b, 64)
				want, wantErr := Compute(op, av, bv)

				c := New(Options{})
				c.current = a
				if err := c.ChooseOperator(op); err != nil {
					t.Fatalf("ChooseOperator(%v): %v", op, err)
				}
				c.current = b
				c.resetNext = false
				c.operand = true
				err := c.Evaluate()

				if !errors.Is(err, wantErr) {
					t.Errorf("%s %v %s: error %v, want %v", a, op, b, err, wantErr)
					continue
				}
				if wantErr != nil {
					continue
				}
				if got := c.value(); got != want {
					t.Errorf("%s %v %s: got %v, want %v", a, op, b, got, want)
				}
			}
		}
	}
}

func TestComputeUnary(t *testing.T) {
	tests := []struct {
		fn   Function
		x    float64
		want float64
	}{
		{Square, 5, 25},
		{Square, -3, 9},
		{SquareRoot, 16, 4},
		{Reciprocal, 4, 0.25},
		{Reciprocal, 3, 0.33333333},
		{Percent, 50, 0.5},
		{Negate, 2, -2},
	}
	for _, tc := range tests {
		got, err := ComputeUnary(tc.fn, tc.x)
		if err != nil {
			t.Errorf("ComputeUnary(%v, %v): %v", tc.fn, tc.x, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ComputeUnary(%v, %v): got %v, want %v", tc.fn, tc.x, got, tc.want)
		}
	}

	if _, err := ComputeUnary(Backspace, 1); !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("Backspace is not numeric: got %v", err)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.30000000000000004, 0.3},
		{1.123456789, 1.12345679},
		{-0.000000001, 0},
		{2, 2},
	}
	for _, tc := range tests {
		if got := Round(tc.in); got != tc.want {
			t.Errorf("Round(%v): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestErrorKind(t *testing.T) {
	if got := ErrorKind(ErrDivisionByZero); got != "division_by_zero" {
		t.Errorf("got %q", got)
	}
	if got := ErrorKind(errors.New("boom")); got != "other" {
		t.Errorf("got %q", got)
	}
	if !IsCalcError(ErrReciprocalOfZero) || IsCalcError(nil) {
		t.Error("IsCalcError mismatch")
	}
}
