package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odelab/internal/ode"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	if r.Len() != 5 {
		t.Errorf("expected 5 catalog models, got %d", r.Len())
	}

	for _, id := range []string{"logistic", "exp_growth", "damped_oscillator", "sir", "vanderpol"} {
		if _, err := r.Get(id); err != nil {
			t.Errorf("catalog missing %s: %v", id, err)
		}
	}
}

func TestRegistryUnknown(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Get("lorenz")
	if !errors.Is(err, ode.ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Logistic(0.5, 100)); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	err := r.Register(Logistic(1.0, 50))
	if !errors.Is(err, ode.ErrDuplicateModel) {
		t.Errorf("expected ErrDuplicateModel, got %v", err)
	}
}

func TestRegistryList(t *testing.T) {
	r := DefaultRegistry()

	ids := make([]string, 0, r.Len())
	for s := range r.List() {
		ids = append(ids, s.ID)
	}
	if len(ids) != r.Len() {
		t.Fatalf("List yielded %d entries, want %d", len(ids), r.Len())
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("List not sorted: %s before %s", ids[i-1], ids[i])
		}
	}

	// Restartable: a second pass yields the same sequence.
	second := make([]string, 0, r.Len())
	for s := range r.List() {
		second = append(second, s.ID)
	}
	if len(second) != len(ids) {
		t.Error("List is not restartable")
	}
}

func TestModelValidate(t *testing.T) {
	tests := []struct {
		name  string
		model *Model
	}{
		{"empty id", &Model{Y0: ode.State{1}, System: ode.Func{N: 1}}},
		{"nil rhs", &Model{ID: "x", Y0: ode.State{1}}},
		{"empty state", &Model{ID: "x", System: ode.Func{N: 1}}},
		{"inverted domain", &Model{ID: "x", T0: 1, TEnd: 0, Y0: ode.State{1}, System: ode.Func{N: 1}}},
		{"nan initial state", &Model{ID: "x", TEnd: 1, Y0: ode.State{math.NaN()}, System: ode.Func{N: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.model.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLogisticAnalytic(t *testing.T) {
	m := Logistic(0.5, 100)

	// Satisfies the ODE: d/dt analytic(t) == rhs(t, analytic(t)).
	for _, tt := range []float64{0, 1, 5, 10, 20} {
		y := m.Analytic(tt)
		dy := m.System.Derive(tt, y)

		eps := 1e-6
		numDeriv := (m.Analytic(tt+eps)[0] - m.Analytic(tt-eps)[0]) / (2 * eps)
		if math.Abs(numDeriv-dy[0]) > 1e-4 {
			t.Errorf("t=%.1f: analytic derivative %.8f disagrees with rhs %.8f", tt, numDeriv, dy[0])
		}
	}

	if math.Abs(m.Analytic(0)[0]-m.Y0[0]) > 1e-12 {
		t.Error("analytic solution does not match initial condition")
	}
}

func TestDampedOscillatorAnalytic(t *testing.T) {
	m := DampedOscillator(2.0, 0.15)

	y := m.Analytic(0)
	if math.Abs(y[0]-1) > 1e-12 || math.Abs(y[1]) > 1e-12 {
		t.Errorf("analytic(0) = %v, want initial state %v", y, m.Y0)
	}

	// Position derivative equals velocity component.
	eps := 1e-6
	for _, tt := range []float64{0.5, 2, 7} {
		numDeriv := (m.Analytic(tt+eps)[0] - m.Analytic(tt-eps)[0]) / (2 * eps)
		if math.Abs(numDeriv-m.Analytic(tt)[1]) > 1e-4 {
			t.Errorf("t=%.1f: x' = %.8f but v = %.8f", tt, numDeriv, m.Analytic(tt)[1])
		}
	}
}

func TestSIRConservation(t *testing.T) {
	m := SIR(0.3, 0.1)

	dy := m.System.Derive(0, m.Y0)
	sum := dy[0] + dy[1] + dy[2]
	if math.Abs(sum) > 1e-15 {
		t.Errorf("S+I+R should be conserved, total derivative %.2e", sum)
	}
}
