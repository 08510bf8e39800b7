// Package compare is the facade consumed by external callers: it takes
// a comparison request, runs the requested (method, policy) pairs
// against one model and aggregates per-pair trajectories, errors and
// convergence orders.
package compare

import (
	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/runner"
)

// Point is one trajectory sample.
type Point struct {
	T float64   `json:"t"`
	Y []float64 `json:"y"`
}

// RunRequest asks for one integration of the model.
type RunRequest struct {
	Method string            `json:"method"`
	Policy runner.StepPolicy `json:"policy"`

	// Halvings > 0 additionally requests a step-size sweep starting at
	// Policy.H with that many halvings.
	Halvings int `json:"halvings,omitempty"`
}

// RunResult is the outcome of one (method, policy) pair. Pairs fail
// independently: a failed pair carries Error and nothing else.
type RunResult struct {
	Method string `json:"method"`
	Policy string `json:"policy"`
	Order  int    `json:"order"`

	Points   []Point `json:"points,omitempty"`
	Steps    int     `json:"steps"`
	Accepted int     `json:"accepted"`
	Rejected int     `json:"rejected"`
	Millis   float64 `json:"compute_time_ms"`

	// GlobalError is nil when the model has no usable reference.
	GlobalError *float64 `json:"global_error,omitempty"`

	Convergence *analysis.ConvergenceStudy `json:"convergence,omitempty"`

	Error string `json:"error,omitempty"`
}

// OK reports whether the pair ran to completion.
func (r *RunResult) OK() bool { return r.Error == "" }

// Comparison aggregates all pairs run against the same model.
type Comparison struct {
	ModelID    string        `json:"model_id"`
	Equation   string        `json:"equation,omitempty"`
	Norm       analysis.Norm `json:"norm"`
	Results    []RunResult   `json:"results"`
	Best       string        `json:"best_method,omitempty"`
	BestReason string        `json:"best_method_reason,omitempty"`
}
