package ode

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// System is the right-hand side of dy/dt = f(t, y). Implementations
// must return a derivative of length Dim() and be finite over the
// model's integration domain.
type System interface {
	Derive(t float64, y State) State
	Dim() int
}

// Func adapts a plain function to the System interface.
type Func struct {
	F func(t float64, y State) State
	N int
}

func (f Func) Derive(t float64, y State) State { return f.F(t, y) }
func (f Func) Dim() int                        { return f.N }
