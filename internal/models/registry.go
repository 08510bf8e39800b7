package models

import (
	"fmt"
	"iter"
	"sort"

	"github.com/san-kum/odelab/internal/ode"
)

// Summary describes a registered model without exposing its internals.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Dim  int    `json:"dim"`
}

// Registry maps model ids to definitions. It is populated once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	models map[string]*Model
	ids    []string
}

func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register adds a model under its id. Registration happens during
// process initialization only.
func (r *Registry) Register(m *Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if _, ok := r.models[m.ID]; ok {
		return fmt.Errorf("%w: %s", ode.ErrDuplicateModel, m.ID)
	}
	r.models[m.ID] = m
	r.ids = append(r.ids, m.ID)
	sort.Strings(r.ids)
	return nil
}

func (r *Registry) Get(id string) (*Model, error) {
	m, ok := r.models[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ode.ErrUnknownModel, id)
	}
	return m, nil
}

// List yields model summaries in id order. The sequence is restartable.
func (r *Registry) List() iter.Seq[Summary] {
	return func(yield func(Summary) bool) {
		for _, id := range r.ids {
			m := r.models[id]
			if !yield(Summary{ID: m.ID, Name: m.Name, Dim: m.Dim()}) {
				return
			}
		}
	}
}

func (r *Registry) Len() int { return len(r.models) }
