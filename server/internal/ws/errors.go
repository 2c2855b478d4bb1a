package ws

import "errors"

// errInvalidFrame is reported to a client whose frame is not an input object.
var errInvalidFrame = errors.New("invalid frame: want {\"key\"} or {\"action\"}")
