package loans

import (
	"errors"
	"fmt"
)

// ErrNonConvergent is matched by every NonConvergentError.
var ErrNonConvergent = errors.New("amortization search did not converge")

// NonConvergentError reports a payment search that could not retire the
// balance. Parameters are kept so callers can log the inputs.
type NonConvergentError struct {
	Parameters  Parameters
	Iterations  int
	LastPayment float64
	LastBalance float64
	Reason      string
}

func (e *NonConvergentError) Error() string {
	return fmt.Sprintf("%s after %d iterations (%s): last payment %.4f left balance %.4f",
		ErrNonConvergent, e.Iterations, e.Reason, e.LastPayment, e.LastBalance)
}

// Is lets errors.Is match ErrNonConvergent.
func (e *NonConvergentError) Is(target error) bool {
	return target == ErrNonConvergent
}
