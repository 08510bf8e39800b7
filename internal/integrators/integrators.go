// Package integrators implements the step-wise numerical methods:
// explicit Euler (order 1), classical RK4 (order 4) and the
// Dormand-Prince embedded RK45 pair used for adaptive stepping.
package integrators

import (
	"fmt"

	"github.com/san-kum/odelab/internal/ode"
)

// Stepper advances a system state by one step of size h.
type Stepper interface {
	Step(sys ode.System, t float64, y ode.State, h float64) ode.State
	Order() int
	Name() string
}

// Embedded is a stepper carrying an embedded lower-order formula whose
// difference from the main formula estimates the local error.
type Embedded interface {
	Stepper
	StepErr(sys ode.System, t float64, y ode.State, h float64) (ode.State, ode.State)
}

// New returns the stepper for a method name.
func New(name string) (Stepper, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4":
		return NewRK4(), nil
	case "rk45":
		return NewRK45(), nil
	}
	return nil, fmt.Errorf("unknown integrator: %s", name)
}

// Names lists the available method names.
func Names() []string {
	return []string{"euler", "rk4", "rk45"}
}
