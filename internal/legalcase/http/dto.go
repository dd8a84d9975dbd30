package http

import (
	"time"

	"github.com/nekogravitycat/court-docket-backend/internal/legalcase"
)

// ListCasesRequest defines query parameters for listing cases.
type ListCasesRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=active pending closed won lost"`
	Priority string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

type CaseResponse struct {
	ID            string     `json:"id"`
	CaseNumber    string     `json:"case_number"`
	ClientName    string     `json:"client_name"`
	OpposingParty string     `json:"opposing_party"`
	CourtName     string     `json:"court_name"`
	JudgeName     string     `json:"judge_name"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	CaseType      string     `json:"case_type"`
	Description   string     `json:"description"`
	NextHearing   *time.Time `json:"next_hearing"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CaseTag is the brief case info embedded in hearing responses.
type CaseTag struct {
	ID         string `json:"id"`
	CaseNumber string `json:"case_number"`
	ClientName string `json:"client_name"`
}

func NewCaseResponse(c *legalcase.Case) CaseResponse {
	return CaseResponse{
		ID:            c.ID,
		CaseNumber:    c.CaseNumber,
		ClientName:    c.ClientName,
		OpposingParty: c.OpposingParty,
		CourtName:     c.CourtName,
		JudgeName:     c.JudgeName,
		Status:        string(c.Status),
		Priority:      string(c.Priority),
		CaseType:      c.CaseType,
		Description:   c.Description,
		NextHearing:   c.NextHearing,
		Notes:         c.Notes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type CreateCaseRequest struct {
	CaseNumber    string     `json:"case_number" binding:"required"`
	ClientName    string     `json:"client_name" binding:"required"`
	OpposingParty string     `json:"opposing_party"`
	CourtName     string     `json:"court_name"`
	JudgeName     string     `json:"judge_name"`
	Status        string     `json:"status" binding:"omitempty,oneof=active pending closed won lost"`
	Priority      string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	CaseType      string     `json:"case_type"`
	Description   string     `json:"description"`
	NextHearing   *time.Time `json:"next_hearing"`
	Notes         string     `json:"notes"`
}

type UpdateCaseRequest struct {
	CaseNumber    *string    `json:"case_number"`
	ClientName    *string    `json:"client_name"`
	OpposingParty *string    `json:"opposing_party"`
	CourtName     *string    `json:"court_name"`
	JudgeName     *string    `json:"judge_name"`
	Status        *string    `json:"status" binding:"omitempty,oneof=active pending closed won lost"`
	Priority      *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	CaseType      *string    `json:"case_type"`
	Description   *string    `json:"description"`
	NextHearing   *time.Time `json:"next_hearing"`
	Notes         *string    `json:"notes"`
}
