package compare

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/integrators"
	"github.com/san-kum/odelab/internal/models"
	"github.com/san-kum/odelab/internal/runner"
)

// Service runs comparison requests against a read-only model registry.
// It is stateless across requests and safe for concurrent use.
type Service struct {
	reg     *models.Registry
	workers int
	norm    analysis.Norm
}

type Option func(*Service)

// WithWorkers bounds the number of pairs integrated concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithNorm selects the error norm used for every pair of a comparison.
func WithNorm(n analysis.Norm) Option {
	return func(s *Service) { s.norm = n }
}

func New(reg *models.Registry, opts ...Option) *Service {
	s := &Service{
		reg:     reg,
		workers: runtime.NumCPU(),
		norm:    analysis.MaxAbs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compare validates the request, integrates every (method, policy)
// pair on a bounded worker pool and aggregates the results. Runtime
// failures are recorded per pair; validation failures abort before any
// computation starts.
func (s *Service) Compare(ctx context.Context, modelID string, reqs []RunRequest) (*Comparison, error) {
	m, err := s.reg.Get(modelID)
	if err != nil {
		return nil, err
	}
	if err := s.norm.Validate(); err != nil {
		return nil, err
	}

	steppers := make([]integrators.Stepper, len(reqs))
	for i, req := range reqs {
		st, err := integrators.New(req.Method)
		if err != nil {
			return nil, err
		}
		if err := req.Policy.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", req.Method, err)
		}
		if req.Halvings > 0 && req.Policy.Adaptive() {
			return nil, fmt.Errorf("%s: step-size sweep requires a fixed-step policy", req.Method)
		}
		steppers[i] = st
	}

	ref, refErr := analysis.ReferenceFor(ctx, m)
	if refErr != nil {
		// Without a reference the comparison still reports trajectories,
		// just no global errors.
		ref = nil
	}

	cmp := &Comparison{
		ModelID:  m.ID,
		Equation: m.Equation,
		Norm:     s.norm,
		Results:  make([]RunResult, len(reqs)),
	}

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cmp.Results[idx] = s.runPair(ctx, m, steppers[idx], reqs[idx], ref)
		}(i)
	}
	wg.Wait()

	s.pickBest(cmp)
	return cmp, nil
}

func (s *Service) runPair(ctx context.Context, m *models.Model, st integrators.Stepper, req RunRequest, ref analysis.Reference) RunResult {
	res := RunResult{
		Method: st.Name(),
		Policy: req.Policy.String(),
		Order:  st.Order(),
	}

	start := time.Now()
	tr, err := runner.Run(ctx, m, st, req.Policy)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Points = toPoints(tr)
	res.Steps = tr.Len() - 1
	res.Accepted = tr.Accepted
	res.Rejected = tr.Rejected

	if ref != nil {
		e := analysis.GlobalError(tr, ref, s.norm)
		res.GlobalError = &e
	}

	if req.Halvings > 0 {
		study, err := analysis.Converge(ctx, m, st, req.Policy.H, req.Halvings, s.norm)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Convergence = study
	}

	res.Millis = float64(time.Since(start).Microseconds()) / 1000.0
	return res
}

func (s *Service) pickBest(cmp *Comparison) {
	best := -1
	for i := range cmp.Results {
		r := &cmp.Results[i]
		if !r.OK() || r.GlobalError == nil {
			continue
		}
		if best < 0 || *r.GlobalError < *cmp.Results[best].GlobalError {
			best = i
		}
	}
	if best < 0 {
		return
	}
	cmp.Best = cmp.Results[best].Method
	cmp.BestReason = fmt.Sprintf("%s has the smallest %s global error against the reference",
		cmp.Best, s.norm)
}

func toPoints(tr *runner.Trajectory) []Point {
	pts := make([]Point, tr.Len())
	for i := range tr.Times {
		pts[i] = Point{T: tr.Times[i], Y: tr.States[i]}
	}
	return pts
}
