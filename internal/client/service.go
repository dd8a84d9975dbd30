package client

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

type CreateRequest struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	PANNumber    string
	AadharNumber string
	Notes        string
}

// UpdateRequest uses pointers to distinguish "not sent" from "sent as empty".
type UpdateRequest struct {
	Name         *string
	Email        *string
	Phone        *string
	Address      *string
	PANNumber    *string
	AadharNumber *string
	Notes        *string
}

type Service interface {
	Create(ctx context.Context, ownerID string, req CreateRequest) (*Client, error)
	// Get returns the client only when ownerID owns it.
	Get(ctx context.Context, id, ownerID string) (*Client, error)
	List(ctx context.Context, ownerID string) ([]*Client, error)
	Update(ctx context.Context, id, ownerID string, req UpdateRequest) (*Client, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) Service {
	return &service{
		repo: repo,
		log:  log.With().Str("component", "client_service").Logger(),
	}
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateRequest) (*Client, error) {
	c := &Client{
		Owner:        ownerID,
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      req.Address,
		PANNumber:    strings.ToUpper(strings.TrimSpace(req.PANNumber)),
		AadharNumber: strings.TrimSpace(req.AadharNumber),
		Notes:        req.Notes,
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", ownerID).Str("client_id", c.ID).Msg("client registered")
	return c, nil
}

// Get hides clients of other users behind ErrNotFound.
func (s *service) Get(ctx context.Context, id, ownerID string) (*Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Owner != ownerID {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns the owner's clients, newest first.
func (s *service) List(ctx context.Context, ownerID string) ([]*Client, error) {
	return s.repo.Query(ctx, []query.Filter{
		query.Where(FieldOwner, query.OpEq, ownerID),
	}, query.Desc(FieldCreatedAt), 0)
}

func (s *service) Update(ctx context.Context, id, ownerID string, req UpdateRequest) (*Client, error) {
	c, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		c.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.PANNumber != nil {
		c.PANNumber = strings.ToUpper(strings.TrimSpace(*req.PANNumber))
	}
	if req.AadharNumber != nil {
		c.AadharNumber = strings.TrimSpace(*req.AadharNumber)
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

	s.log.Info().Str("user_id", ownerID).Str("client_id", c.ID).Msg("client updated")
	return c, nil
}

func (s *service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func validate(c *Client) error {
	switch {
	case c.Name == "":
		return ErrNameRequired
	case c.Email == "":
		return ErrEmailRequired
	case c.Phone == "":
		return ErrPhoneRequired
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
