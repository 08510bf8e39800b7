// Package models holds the catalog of ODE model definitions and the
// read-only registry serving them to the runner and comparison layers.
package models

import (
	"fmt"

	"github.com/san-kum/odelab/internal/ode"
)

// Model is an immutable ODE problem definition: right-hand side,
// parameters, integration domain and initial state, plus an optional
// closed-form solution used as the error reference.
type Model struct {
	ID       string
	Name     string
	Equation string
	Params   map[string]float64
	T0       float64
	TEnd     float64
	Y0       ode.State
	System   ode.System

	// Analytic evaluates the exact solution at t, nil when none exists.
	Analytic func(t float64) ode.State
}

func (m *Model) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("model id must not be empty")
	}
	if m.System == nil {
		return fmt.Errorf("model %s: rhs must be defined", m.ID)
	}
	if len(m.Y0) == 0 {
		return fmt.Errorf("model %s: initial state must not be empty", m.ID)
	}
	if m.TEnd < m.T0 {
		return fmt.Errorf("model %s: t_end %g before t0 %g", m.ID, m.TEnd, m.T0)
	}
	if !m.Y0.IsValid() {
		return fmt.Errorf("model %s: initial state contains NaN/Inf", m.ID)
	}
	return nil
}

// Dim returns the state dimensionality.
func (m *Model) Dim() int { return len(m.Y0) }
