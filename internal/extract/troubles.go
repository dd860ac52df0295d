package extract

import (
	"errors"
	"fmt"
)

type (
	TroubleType int

	// Trouble is a failure specific to a single candidate file. A
	// trouble is recorded against the file and never aborts a run.
	Trouble struct {
		error
		tType  TroubleType
		reason string
	}
)

const (
	PROBE_FAILURE TroubleType = iota
	ENCODE_FAILURE
)

// ErrTransientProbeFailure is wrapped by every Trouble. It marks
// the failure as retryable on a later run.
var ErrTransientProbeFailure = errors.New("transient probe failure")

func newTrouble(tType TroubleType, reason string) Trouble {
	return Trouble{error: fmt.Errorf("%w: %s", ErrTransientProbeFailure, reason), tType: tType, reason: reason}
}

func (t Trouble) Type() TroubleType { return t.tType }
func (t Trouble) Unwrap() error     { return t.error }

// Reason is the human readable description of the failure, as
// recorded against the file in the run result.
func (t Trouble) Reason() string { return t.reason }

func (t TroubleType) String() string {
	switch t {
	case PROBE_FAILURE:
		return fmt.Sprintf("PROBE_FAILURE[%d]", t)
	case ENCODE_FAILURE:
		return fmt.Sprintf("ENCODE_FAILURE[%d]", t)
	default:
		return fmt.Sprintf("UNKNOWN[%d]", t)
	}
}
