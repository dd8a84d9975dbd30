package legalcase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

type CreateRequest struct {
	CaseNumber    string
	ClientName    string
	OpposingParty string
	CourtName     string
	JudgeName     string
	Status        string
	Priority      string
	CaseType      string
	Description   string
	NextHearing   *time.Time
	Notes         string
}

// UpdateRequest uses pointers to distinguish "not sent" from "sent as empty".
type UpdateRequest struct {
	CaseNumber    *string
	ClientName    *string
	OpposingParty *string
	CourtName     *string
	JudgeName     *string
	Status        *string
	Priority      *string
	CaseType      *string
	Description   *string
	NextHearing   *time.Time
	Notes         *string
}

// HearingCleaner removes the hearings of a deleted case.
type HearingCleaner interface {
	DeleteByCase(ctx context.Context, caseID string) error
}

type Service interface {
	Create(ctx context.Context, ownerID string, req CreateRequest) (*Case, error)
	// GetByID returns the case regardless of owner. Callers must check ownership.
	GetByID(ctx context.Context, id string) (*Case, error)
	GetOwned(ctx context.Context, id, ownerID string) (*Case, error)
	List(ctx context.Context, filter Filter) ([]*Case, error)
	Update(ctx context.Context, id, ownerID string, req UpdateRequest) (*Case, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type service struct {
	repo     Repository
	hearings HearingCleaner
}

func NewService(repo Repository, hearings HearingCleaner) Service {
	return &service{
		repo:     repo,
		hearings: hearings,
	}
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Case, error) {
	c := &Case{
		Owner:         ownerID,
		CaseNumber:    strings.TrimSpace(req.CaseNumber),
		ClientName:    strings.TrimSpace(req.ClientName),
		OpposingParty: req.OpposingParty,
		CourtName:     req.CourtName,
		JudgeName:     req.JudgeName,
		Status:        StatusActive,
		Priority:      PriorityMedium,
		CaseType:      req.CaseType,
		Description:   req.Description,
		NextHearing:   req.NextHearing,
		Notes:         req.Notes,
	}
	if req.Status != "" {
		c.Status = Status(req.Status)
	}
	if req.Priority != "" {
		c.Priority = Priority(req.Priority)
	}

	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Case, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetOwned(ctx context.Context, id, ownerID string) (*Case, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Owner != ownerID {
		return nil, ErrPermissionDenied
	}
	return c, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Case, error) {
	filters := []query.Filter{query.Where(FieldOwner, query.OpEq, filter.OwnerID)}
	if filter.Status != "" {
		filters = append(filters, query.Where(FieldStatus, query.OpEq, filter.Status))
	}
	if filter.Priority != "" {
		filters = append(filters, query.Where(FieldPriority, query.OpEq, filter.Priority))
	}
	return s.repo.Query(ctx, filters, query.Desc(FieldCreatedAt), 0)
}

func (s *service) Update(ctx context.Context, id, ownerID string, req UpdateRequest) (*Case, error) {
	c, err := s.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.CaseNumber != nil {
		c.CaseNumber = strings.TrimSpace(*req.CaseNumber)
	}
	if req.ClientName != nil {
		c.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.OpposingParty != nil {
		c.OpposingParty = *req.OpposingParty
	}
	if req.CourtName != nil {
		c.CourtName = *req.CourtName
	}
	if req.JudgeName != nil {
		c.JudgeName = *req.JudgeName
	}
	if req.Status != nil {
		c.Status = Status(*req.Status)
	}
	if req.Priority != nil {
		c.Priority = Priority(*req.Priority)
	}
	if req.CaseType != nil {
		c.CaseType = *req.CaseType
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.NextHearing != nil {
		c.NextHearing = req.NextHearing
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the case, then every hearing scheduled under it. A failed case
// delete leaves the hearings untouched.
func (s *service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.GetOwned(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.hearings != nil {
		if err := s.hearings.DeleteByCase(ctx, id); err != nil {
			return fmt.Errorf("delete hearings of case %s: %w", id, err)
		}
	}
	return nil
}

func validate(c *Case) error {
	if c.CaseNumber == "" {
		return ErrCaseNumberRequired
	}
	if c.ClientName == "" {
		return ErrClientNameRequired
	}
	if !c.Status.Valid() {
		return ErrInvalidStatus
	}
	if !c.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}
