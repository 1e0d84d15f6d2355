package model

import (
	"errors"
	"fmt"
	"math"
)

// Evaluation errors. Callers distinguish them with errors.Is.
var (
	// ErrDomain indicates a physical parameter outside the formula's valid domain.
	ErrDomain = errors.New("model: parameter outside valid domain")

	// ErrShape indicates mismatched array or vector lengths.
	ErrShape = errors.New("model: shape mismatch")

	// ErrUnknownModel indicates a registry lookup for an unregistered name.
	ErrUnknownModel = errors.New("model: unknown model")
)

// DomainError names the parameter and the constraint it violated.
type DomainError struct {
	Param      string
	Value      float64
	Constraint string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("model: %s = %g violates %s", e.Param, e.Value, e.Constraint)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// requirePositive returns a *DomainError unless v is finite and strictly positive.
func requirePositive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return &DomainError{Param: name, Value: v, Constraint: "0 < " + name + " < +Inf"}
	}
	return nil
}

// checkTimes rejects negative or NaN observation times. t = 0 is allowed
// and propagates Inf/NaN through the temperature term.
func checkTimes(t []float64) error {
	for i, v := range t {
		if !(v >= 0) || math.IsInf(v, 1) {
			return &DomainError{
				Param:      fmt.Sprintf("t[%d]", i),
				Value:      v,
				Constraint: "0 <= t < +Inf",
			}
		}
	}
	return nil
}

func shapeError(format string, v ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrShape}, v...)...)
}
