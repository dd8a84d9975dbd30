package http

import (
	"time"

	"github.com/nekogravitycat/court-docket-backend/internal/hearing"
	caseHttp "github.com/nekogravitycat/court-docket-backend/internal/legalcase/http"
)

type ResourceScopeBody struct {
	CourtroomID *string `json:"courtroom_id"`
	CounselID   *string `json:"counsel_id"`
	ClientID    *string `json:"client_id"`
}

type OverrideBody struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// HearingFields are the writable hearing attributes shared by create, update and check.
// Absent fields are left unchanged on update.
type HearingFields struct {
	HearingDate       *string             `json:"hearing_date"`
	HearingTime       *string             `json:"hearing_time"`
	Timezone          *string             `json:"timezone"`
	StartAt           *string             `json:"start_at"`
	EndAt             *string             `json:"end_at"`
	Duration          *int                `json:"duration"`
	Status            *string             `json:"status" binding:"omitempty,oneof=scheduled completed adjourned cancelled"`
	ResourceScope     *ResourceScopeBody  `json:"resource_scope"`
	CourtName         *string             `json:"court_name"`
	JudgeName         *string             `json:"judge_name"`
	HearingType       *string             `json:"hearing_type" binding:"omitempty,oneof=first_hearing interim_hearing final_hearing evidence_hearing argument_hearing judgment_hearing other"`
	Purpose           *string             `json:"purpose"`
	CourtInstructions *string             `json:"court_instructions"`
	DocumentsToBring  []string            `json:"documents_to_bring"`
	Proceedings       *string             `json:"proceedings"`
	NextHearingDate   *string             `json:"next_hearing_date"`
	NextHearingTime   *string             `json:"next_hearing_time"`
	AdjournmentReason *string             `json:"adjournment_reason"`
	Attendance        *hearing.Attendance `json:"attendance"`
	Orders            []hearing.Order     `json:"orders"`
	Notes             *string             `json:"notes"`
	ConflictOverride  *OverrideBody       `json:"conflict_override"`
}

func (f HearingFields) input(caseID *string) hearing.Input {
	in := hearing.Input{
		CaseID:            caseID,
		HearingDate:       f.HearingDate,
		HearingTime:       f.HearingTime,
		Timezone:          f.Timezone,
		StartAt:           f.StartAt,
		EndAt:             f.EndAt,
		Duration:          f.Duration,
		Status:            f.Status,
		CourtName:         f.CourtName,
		JudgeName:         f.JudgeName,
		HearingType:       f.HearingType,
		Purpose:           f.Purpose,
		CourtInstructions: f.CourtInstructions,
		DocumentsToBring:  f.DocumentsToBring,
		Proceedings:       f.Proceedings,
		NextHearingDate:   f.NextHearingDate,
		NextHearingTime:   f.NextHearingTime,
		AdjournmentReason: f.AdjournmentReason,
		Attendance:        f.Attendance,
		Orders:            f.Orders,
		Notes:             f.Notes,
	}
	if f.ResourceScope != nil {
		in.CourtroomID = f.ResourceScope.CourtroomID
		in.CounselID = f.ResourceScope.CounselID
		in.ClientID = f.ResourceScope.ClientID
	}
	if f.ConflictOverride != nil {
		in.Override = &hearing.OverrideRequest{
			Allowed: f.ConflictOverride.Allowed,
			Reason:  f.ConflictOverride.Reason,
		}
	}
	return in
}

type CreateHearingRequest struct {
	CaseID string `json:"case_id" binding:"required,uuid"`
	HearingFields
}

// Validate performs custom validation for CreateHearingRequest.
func (r *CreateHearingRequest) Validate() error {
	if r.CourtName == nil {
		return hearing.ErrCourtNameRequired
	}
	if r.HearingDate == nil && r.StartAt == nil {
		return hearing.ErrTimeRequiredForScan
	}
	return nil
}

type UpdateHearingRequest struct {
	CaseID *string `json:"case_id" binding:"omitempty,uuid"`
	HearingFields
}

// CheckConflictsRequest is a dry run of a create (no hearing_id) or an update.
type CheckConflictsRequest struct {
	HearingID string `json:"hearing_id" binding:"omitempty,uuid"`
	HearingFields
}

type ListTodayRequest struct {
	Timezone string `form:"timezone"`
}

type ResourceScopeResponse struct {
	CourtroomID string `json:"courtroom_id"`
	CounselID   string `json:"counsel_id"`
	ClientID    string `json:"client_id"`
}

type ConflictOverrideResponse struct {
	Allowed             bool       `json:"allowed"`
	Reason              string     `json:"reason"`
	OverriddenBy        string     `json:"overridden_by"`
	OverriddenAt        *time.Time `json:"overridden_at"`
	ConflictingHearings []string   `json:"conflicting_hearings"`
}

type HearingResponse struct {
	ID                string                   `json:"id"`
	CaseID            string                   `json:"case_id"`
	Case              *caseHttp.CaseTag        `json:"case,omitempty"`
	HearingDate       *time.Time               `json:"hearing_date"`
	HearingTime       string                   `json:"hearing_time"`
	Timezone          string                   `json:"timezone"`
	StartAt           *time.Time               `json:"start_at"`
	EndAt             *time.Time               `json:"end_at"`
	Duration          int                      `json:"duration"`
	Status            string                   `json:"status"`
	ResourceScope     ResourceScopeResponse    `json:"resource_scope"`
	ConflictOverride  ConflictOverrideResponse `json:"conflict_override"`
	CourtName         string                   `json:"court_name"`
	JudgeName         string                   `json:"judge_name"`
	HearingType       string                   `json:"hearing_type"`
	Purpose           string                   `json:"purpose"`
	CourtInstructions string                   `json:"court_instructions"`
	DocumentsToBring  []string                 `json:"documents_to_bring"`
	Proceedings       string                   `json:"proceedings"`
	NextHearingDate   *time.Time               `json:"next_hearing_date"`
	NextHearingTime   string                   `json:"next_hearing_time"`
	AdjournmentReason string                   `json:"adjournment_reason"`
	Attendance        hearing.Attendance       `json:"attendance"`
	Orders            []hearing.Order          `json:"orders"`
	Notes             string                   `json:"notes"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

func NewHearingResponse(h *hearing.Hearing) HearingResponse {
	resp := HearingResponse{
		ID:          h.ID,
		CaseID:      h.CaseID,
		HearingDate: h.HearingDate,
		HearingTime: h.HearingTime,
		Timezone:    h.Timezone,
		StartAt:     h.StartAt,
		EndAt:       h.EndAt,
		Duration:    h.Duration,
		Status:      string(h.Status),
		ResourceScope: ResourceScopeResponse{
			CourtroomID: h.ResourceScope.CourtroomID,
			CounselID:   h.ResourceScope.CounselID,
			ClientID:    h.ResourceScope.ClientID,
		},
		ConflictOverride: ConflictOverrideResponse{
			Allowed:             h.ConflictOverride.Allowed,
			Reason:              h.ConflictOverride.Reason,
			OverriddenBy:        h.ConflictOverride.OverriddenBy,
			OverriddenAt:        h.ConflictOverride.OverriddenAt,
			ConflictingHearings: nonNil(h.ConflictOverride.ConflictingHearings),
		},
		CourtName:         h.CourtName,
		JudgeName:         h.JudgeName,
		HearingType:       string(h.HearingType),
		Purpose:           h.Purpose,
		CourtInstructions: h.CourtInstructions,
		DocumentsToBring:  nonNil(h.DocumentsToBring),
		Proceedings:       h.Proceedings,
		NextHearingDate:   h.NextHearingDate,
		NextHearingTime:   h.NextHearingTime,
		AdjournmentReason: h.AdjournmentReason,
		Attendance:        h.Attendance,
		Orders:            h.Orders,
		Notes:             h.Notes,
		CreatedAt:         h.CreatedAt,
		UpdatedAt:         h.UpdatedAt,
	}
	if resp.Orders == nil {
		resp.Orders = []hearing.Order{}
	}
	if h.CaseNumber != "" || h.ClientName != "" {
		resp.Case = &caseHttp.CaseTag{ID: h.CaseID, CaseNumber: h.CaseNumber, ClientName: h.ClientName}
	}
	return resp
}

type ConflictResponse struct {
	HearingID      string    `json:"hearing_id"`
	CaseNumber     string    `json:"case_number"`
	StartAt        time.Time `json:"start_at"`
	EndAt          time.Time `json:"end_at"`
	ConflictReason string    `json:"conflict_reason"`
	ResourceScope  []string  `json:"resource_scope"`
}

func NewConflictResponses(conflicts []hearing.Conflict) []ConflictResponse {
	out := make([]ConflictResponse, len(conflicts))
	for i, c := range conflicts {
		out[i] = ConflictResponse{
			HearingID:      c.HearingID,
			CaseNumber:     c.CaseNumber,
			StartAt:        c.StartAt,
			EndAt:          c.EndAt,
			ConflictReason: c.ConflictReason,
			ResourceScope:  nonNil(c.ResourceScope),
		}
	}
	return out
}

// ConflictErrorResponse is sent with 409 when a write clashes with existing hearings.
type ConflictErrorResponse struct {
	Error     string             `json:"error"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

type CheckConflictsResponse struct {
	Valid     bool               `json:"valid"`
	Errors    []string           `json:"errors"`
	StartAt   *time.Time         `json:"start_at"`
	EndAt     *time.Time         `json:"end_at"`
	Scopes    string             `json:"scopes"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

func NewCheckConflictsResponse(r *hearing.CheckResult) CheckConflictsResponse {
	return CheckConflictsResponse{
		Valid:     r.Valid,
		Errors:    nonNil(r.Errors),
		StartAt:   r.StartAt,
		EndAt:     r.EndAt,
		Scopes:    r.Scopes,
		Conflicts: NewConflictResponses(r.Conflicts),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
