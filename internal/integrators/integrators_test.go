package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/odelab/internal/ode"
)

type harmonicOscillator struct{}

func (h harmonicOscillator) Dim() int { return 2 }
func (h harmonicOscillator) Derive(t float64, y ode.State) ode.State {
	return ode.State{y[1], -y[0]}
}

type expDecay struct{}

func (e expDecay) Dim() int { return 1 }
func (e expDecay) Derive(t float64, y ode.State) ode.State {
	return ode.State{-y[0]}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		st, err := New(name)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", name, err)
		}
		if st.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, st.Name())
		}
	}

	if _, err := New("verlet"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestEulerStep(t *testing.T) {
	st := NewEuler()
	y := st.Step(expDecay{}, 0, ode.State{1.0}, 0.1)

	// Single explicit Euler step: y1 = y0 + h*(-y0)
	if math.Abs(y[0]-0.9) > 1e-15 {
		t.Errorf("expected 0.9, got %.15f", y[0])
	}
}

func TestRK4Accuracy(t *testing.T) {
	st := NewRK4()
	y := ode.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		y = st.Step(harmonicOscillator{}, float64(i)*dt, y, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(y[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", y[0], expectedX)
	}
	if math.Abs(y[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", y[1], expectedV)
	}
}

func TestRK45Step(t *testing.T) {
	st := NewRK45()
	y := ode.State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		y = st.Step(harmonicOscillator{}, float64(i)*dt, y, dt)
	}

	if !y.IsValid() {
		t.Fatal("RK45 produced invalid state")
	}

	expected := math.Cos(10.0)
	if math.Abs(y[0]-expected) > 1e-7 {
		t.Errorf("RK45 drifted: got %.12f, expected %.12f", y[0], expected)
	}
}

func TestRK45ErrorEstimate(t *testing.T) {
	st := NewRK45()
	y0 := ode.State{1.0}

	_, errSmall := st.StepErr(expDecay{}, 0, y0, 0.01)
	_, errLarge := st.StepErr(expDecay{}, 0, y0, 0.5)

	if errSmall.MaxAbs() >= errLarge.MaxAbs() {
		t.Errorf("error estimate should grow with h: %e vs %e",
			errSmall.MaxAbs(), errLarge.MaxAbs())
	}
}

func TestRK4BeatsEuler(t *testing.T) {
	euler := NewEuler()
	rk4 := NewRK4()

	dt := 0.1
	steps := 100
	yE := ode.State{1.0, 0.0}
	yR := ode.State{1.0, 0.0}

	for i := 0; i < steps; i++ {
		tNow := float64(i) * dt
		yE = euler.Step(harmonicOscillator{}, tNow, yE, dt)
		yR = rk4.Step(harmonicOscillator{}, tNow, yR, dt)
	}

	exact := math.Cos(float64(steps) * dt)
	if math.Abs(yR[0]-exact) >= math.Abs(yE[0]-exact) {
		t.Errorf("RK4 error %.6f should be below Euler error %.6f",
			math.Abs(yR[0]-exact), math.Abs(yE[0]-exact))
	}
}

func TestOrders(t *testing.T) {
	tests := []struct {
		st    Stepper
		order int
	}{
		{NewEuler(), 1},
		{NewRK4(), 4},
		{NewRK45(), 4},
	}

	for _, tt := range tests {
		if got := tt.st.Order(); got != tt.order {
			t.Errorf("%s: Order() = %d, want %d", tt.st.Name(), got, tt.order)
		}
	}
}
