package integrators

import "github.com/san-kum/odelab/internal/ode"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }
func (e *Euler) Order() int   { return 1 }

func (e *Euler) Step(sys ode.System, t float64, y ode.State, h float64) ode.State {
	dy := sys.Derive(t, y)
	result := make(ode.State, len(y))
	for i := range y {
		result[i] = y[i] + h*dy[i]
	}
	return result
}
