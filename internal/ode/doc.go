// Package ode provides the core primitives for first-order ODE
// integration:
//
//   - [State]: vector representing the dependent variables y
//   - [System]: interface for ODE right-hand sides (dy/dt = f(t, y))
//   - error taxonomy shared by the runner and comparison layers
//
// # Example
//
//	sys := models.Logistic(0.5, 100)
//	st := integrators.NewRK4()
//	y1 := st.Step(sys, t, y0, h)
//
// # Thread Safety
//
// State values and System implementations are treated as read-only
// during a run; nothing in this package mutates shared state.
package ode
