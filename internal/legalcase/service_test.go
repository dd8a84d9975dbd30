package legalcase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCleaner struct {
	deleted []string
}

func (r *recordingCleaner) DeleteByCase(_ context.Context, caseID string) error {
	r.deleted = append(r.deleted, caseID)
	return nil
}

// failingDeleteRepository refuses to delete so callers can observe what ran before.
type failingDeleteRepository struct {
	Repository
}

func (failingDeleteRepository) Delete(context.Context, string) error {
	return errors.New("store unavailable")
}

func newTestService() (Service, *recordingCleaner) {
	cleaner := &recordingCleaner{}
	return NewService(NewMemoryRepository(), cleaner), cleaner
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", CreateRequest{CaseNumber: " CS-101/2024 ", ClientName: "R. Sharma"})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "CS-101/2024", c.CaseNumber)
	assert.Equal(t, StatusActive, c.Status)
	assert.Equal(t, PriorityMedium, c.Priority)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"missing number", CreateRequest{ClientName: "A"}, ErrCaseNumberRequired},
		{"missing client", CreateRequest{CaseNumber: "1"}, ErrClientNameRequired},
		{"bad status", CreateRequest{CaseNumber: "1", ClientName: "A", Status: "dormant"}, ErrInvalidStatus},
		{"bad priority", CreateRequest{CaseNumber: "1", ClientName: "A", Priority: "asap"}, ErrInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "owner-1", tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOwnership(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", CreateRequest{CaseNumber: "1", ClientName: "A"})
	require.NoError(t, err)

	_, err = svc.GetOwned(ctx, c.ID, "owner-2")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.GetOwned(ctx, "missing", "owner-1")
	assert.ErrorIs(t, err, ErrNotFound)

	status := "closed"
	_, err = svc.Update(ctx, c.ID, "owner-2", UpdateRequest{Status: &status})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateAndList(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "owner-1", CreateRequest{CaseNumber: "1", ClientName: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-1", CreateRequest{CaseNumber: "2", ClientName: "B", Priority: "urgent"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner-2", CreateRequest{CaseNumber: "3", ClientName: "C"})
	require.NoError(t, err)

	status := "won"
	updated, err := svc.Update(ctx, first.ID, "owner-1", UpdateRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, StatusWon, updated.Status)

	all, err := svc.List(ctx, Filter{OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	won, err := svc.List(ctx, Filter{OwnerID: "owner-1", Status: "won"})
	require.NoError(t, err)
	require.Len(t, won, 1)
	assert.Equal(t, first.ID, won[0].ID)

	urgent, err := svc.List(ctx, Filter{OwnerID: "owner-1", Priority: "urgent"})
	require.NoError(t, err)
	require.Len(t, urgent, 1)
	assert.Equal(t, "2", urgent[0].CaseNumber)
}

func TestDeleteCascadesToHearings(t *testing.T) {
	svc, cleaner := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", CreateRequest{CaseNumber: "1", ClientName: "A"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, c.ID, "owner-2"), ErrPermissionDenied)
	assert.Empty(t, cleaner.deleted)

	require.NoError(t, svc.Delete(ctx, c.ID, "owner-1"))
	assert.Equal(t, []string{c.ID}, cleaner.deleted)

	_, err = svc.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteKeepsHearingsWhenCaseDeleteFails(t *testing.T) {
	cleaner := &recordingCleaner{}
	svc := NewService(failingDeleteRepository{Repository: NewMemoryRepository()}, cleaner)
	ctx := context.Background()

	c, err := svc.Create(ctx, "owner-1", CreateRequest{CaseNumber: "1", ClientName: "A"})
	require.NoError(t, err)

	assert.Error(t, svc.Delete(ctx, c.ID, "owner-1"))
	assert.Empty(t, cleaner.deleted)

	_, err = svc.GetByID(ctx, c.ID)
	assert.NoError(t, err)
}
