package legalcase

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

type memoryRepository struct {
	mu    sync.RWMutex
	cases map[string]Case
}

// NewMemoryRepository creates a process-local Repository. Data is lost on restart.
func NewMemoryRepository() Repository {
	return &memoryRepository{cases: make(map[string]Case)}
}

func (c *Case) field(name string) (any, bool) {
	switch name {
	case FieldOwner:
		return c.Owner, true
	case FieldStatus:
		return string(c.Status), true
	case FieldCaseNumber:
		return c.CaseNumber, true
	case FieldPriority:
		return string(c.Priority), true
	case FieldCreatedAt:
		return c.CreatedAt, true
	}
	return nil, false
}

func (r *memoryRepository) Query(_ context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Case, error) {
	if order != nil {
		if _, ok := (&Case{}).field(order.Field); !ok {
			return nil, query.ErrUnknownField
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Case
	for _, stored := range r.cases {
		c := stored
		ok, err := query.Match(filters, c.field)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, &c)
		}
	}

	if order != nil {
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := out[i].field(order.Field)
			b, _ := out[j].field(order.Field)
			return query.Less(a, b, order.Desc)
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepository) Create(_ context.Context, c *Case) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	touch(c, true)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cases[c.ID] = *c
	return nil
}

func (r *memoryRepository) Update(_ context.Context, c *Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cases[c.ID]; !ok {
		return ErrNotFound
	}
	touch(c, false)
	r.cases[c.ID] = *c
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cases[id]; !ok {
		return ErrNotFound
	}
	delete(r.cases, id)
	return nil
}
