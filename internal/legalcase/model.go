package legalcase

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "case not found")
	ErrPermissionDenied   = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidStatus      = apperror.New(http.StatusBadRequest, "invalid case status")
	ErrInvalidPriority    = apperror.New(http.StatusBadRequest, "invalid case priority")
	ErrCaseNumberRequired = apperror.New(http.StatusBadRequest, "case number is required")
	ErrClientNameRequired = apperror.New(http.StatusBadRequest, "client name is required")
)

type Status string

const (
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusClosed  Status = "closed"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusClosed, StatusWon, StatusLost:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Case is a legal matter handled by one user. Hearings hang off a case.
type Case struct {
	ID            string     `bson:"_id"`
	Owner         string     `bson:"owner"`
	CaseNumber    string     `bson:"caseNumber"`
	ClientName    string     `bson:"clientName"`
	OpposingParty string     `bson:"opposingParty"`
	CourtName     string     `bson:"courtName"`
	JudgeName     string     `bson:"judgeName"`
	Status        Status     `bson:"status"`
	Priority      Priority   `bson:"priority"`
	CaseType      string     `bson:"caseType"`
	Description   string     `bson:"description"`
	NextHearing   *time.Time `bson:"nextHearing,omitempty"`
	Notes         string     `bson:"notes"`
	CreatedAt     time.Time  `bson:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt"`
}

// Field names understood by the repositories' Query method.
const (
	FieldOwner      = "owner"
	FieldStatus     = "status"
	FieldCaseNumber = "caseNumber"
	FieldPriority   = "priority"
	FieldCreatedAt  = "createdAt"
)

// Filter defines filter options for listing cases.
type Filter struct {
	OwnerID  string
	Status   string
	Priority string
}
