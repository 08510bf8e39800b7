package integrators

import (
	"testing"

	"github.com/san-kum/odelab/internal/ode"
)

type benchSystem struct{}

func (b benchSystem) Dim() int { return 2 }
func (b benchSystem) Derive(t float64, y ode.State) ode.State {
	return ode.State{y[1], -y[0]}
}

func BenchmarkEuler(b *testing.B) {
	st := NewEuler()
	y := ode.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y = st.Step(benchSystem{}, 0, y, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	st := NewRK4()
	y := ode.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y = st.Step(benchSystem{}, 0, y, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	st := NewRK45()
	y := ode.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y = st.Step(benchSystem{}, 0, y, 0.01)
	}
}

type benchSIR struct{}

func (b benchSIR) Dim() int { return 3 }
func (b benchSIR) Derive(t float64, y ode.State) ode.State {
	beta, gamma := 0.3, 0.1
	s, i := y[0], y[1]
	return ode.State{-beta * s * i, beta*s*i - gamma*i, gamma * i}
}

func BenchmarkRK4_SIR(b *testing.B) {
	st := NewRK4()
	y := ode.State{0.99, 0.01, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y = st.Step(benchSIR{}, 0, y, 0.01)
	}
}
