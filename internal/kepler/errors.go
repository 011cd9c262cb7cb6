package kepler

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain indicates an eccentricity outside the solver's valid range.
	ErrDomain = errors.New("kepler: eccentricity out of domain")

	// ErrNonConvergence indicates the iteration cap was reached before the
	// residual dropped below Tolerance.
	ErrNonConvergence = errors.New("kepler: iteration cap reached without convergence")
)

// DomainError reports a rejected eccentricity together with the conic
// section it was offered to.
type DomainError struct {
	Orbit        string
	Eccentricity float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("kepler: eccentricity %g out of domain for %s orbit", e.Eccentricity, e.Orbit)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}
