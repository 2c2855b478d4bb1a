package api

import (
	"fmt"
	"time"

	"github.com/quickcalc/quickcalc/pkg/calc"
	"github.com/quickcalc/quickcalc/pkg/types"
	"github.com/quickcalc/quickcalc/server/internal/metrics"
	"github.com/quickcalc/quickcalc/server/internal/store"
)

// Parse resolves the request to a calculator input.
func (req InputRequest) Parse() (calc.Input, error) {
	switch {
	case req.Key != "" && req.Action != "":
		return calc.Input{}, fmt.Errorf("api: both key and action set: %w", calc.ErrUnknownInput)
	case req.Key != "":
		return calc.ParseKey(req.Key)
	case req.Action != "":
		return calc.ParseAction(req.Action)
	}
	return calc.Input{}, fmt.Errorf("api: key or action required: %w", calc.ErrUnknownInput)
}

// ApplyInput parses req and applies it to sess, counting the input and any
// error in m. On error the returned view is the session's unchanged view.
func ApplyInput(sess *store.Session, req InputRequest, m *metrics.Registry, now time.Time) (types.CalculatorView, error) {
	in, err := req.Parse()
	if err != nil {
		m.IncError(calc.ErrorKind(err))
		return sess.View(), err
	}
	m.IncInput(in.Kind.String())
	view, err := sess.Apply(in, now)
	if err != nil {
		m.IncError(calc.ErrorKind(err))
	}
	return view, err
}
