package hearing

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

type memoryRepository struct {
	mu       sync.RWMutex
	hearings map[string]Hearing
}

// NewMemoryRepository creates a process-local Repository. Data is lost on restart.
func NewMemoryRepository() Repository {
	return &memoryRepository{hearings: make(map[string]Hearing)}
}

func (h *Hearing) field(name string) (any, bool) {
	switch name {
	case FieldID:
		return h.ID, true
	case FieldOwner:
		return h.Owner, true
	case FieldCaseID:
		return h.CaseID, true
	case FieldStatus:
		return string(h.Status), true
	case FieldHearingDate:
		return h.HearingDate, true
	case FieldHearingTime:
		return h.HearingTime, true
	case FieldStartAt:
		return h.StartAt, true
	case FieldDocuments:
		return h.DocumentsToBring, true
	}
	return nil, false
}

func (r *memoryRepository) Query(_ context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Hearing, error) {
	if order != nil {
		if _, ok := (&Hearing{}).field(order.Field); !ok {
			return nil, query.ErrUnknownField
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Hearing
	for _, stored := range r.hearings {
		h := clone(stored)
		ok, err := query.Match(filters, h.field)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, h)
		}
	}

	// Map iteration is random; fall back to creation order for a stable result.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
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

func (r *memoryRepository) GetByID(_ context.Context, id string) (*Hearing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.hearings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(h), nil
}

func (r *memoryRepository) Create(_ context.Context, h *Hearing) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	fillEmpty(h)
	touch(h, true)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.hearings[h.ID] = *clone(*h)
	return nil
}

func (r *memoryRepository) Update(_ context.Context, h *Hearing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.hearings[h.ID]; !ok {
		return ErrNotFound
	}
	fillEmpty(h)
	touch(h, false)
	r.hearings[h.ID] = *clone(*h)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.hearings[id]; !ok {
		return ErrNotFound
	}
	delete(r.hearings, id)
	return nil
}

func (r *memoryRepository) DeleteByCase(_ context.Context, caseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, h := range r.hearings {
		if h.CaseID == caseID {
			delete(r.hearings, id)
		}
	}
	return nil
}

// clone copies the slices so callers cannot mutate stored records.
func clone(h Hearing) *Hearing {
	h.DocumentsToBring = append([]string(nil), h.DocumentsToBring...)
	h.ConflictOverride.ConflictingHearings = append([]string(nil), h.ConflictOverride.ConflictingHearings...)
	h.Attendance.WitnessesPresent = append([]string(nil), h.Attendance.WitnessesPresent...)
	h.Orders = append([]Order(nil), h.Orders...)
	return &h
}
