package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/court-docket-backend/internal/auth"
	"github.com/nekogravitycat/court-docket-backend/internal/legalcase"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/request"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/response"
)

type Handler struct {
	service legalcase.Service
}

func NewHandler(service legalcase.Service) *Handler {
	return &Handler{service: service}
}

// List returns the current user's cases, newest first.
func (h *Handler) List(c *gin.Context) {
	var req ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid query parameters", []string{err.Error()})
		return
	}

	cases, err := h.service.List(c.Request.Context(), legalcase.Filter{
		OwnerID:  auth.GetUserID(c),
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CaseResponse, len(cases))
	for i, cs := range cases {
		items[i] = NewCaseResponse(cs)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateCaseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request body", []string{err.Error()})
		return
	}

	cs, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), legalcase.CreateRequest{
		CaseNumber:    body.CaseNumber,
		ClientName:    body.ClientName,
		OpposingParty: body.OpposingParty,
		CourtName:     body.CourtName,
		JudgeName:     body.JudgeName,
		Status:        body.Status,
		Priority:      body.Priority,
		CaseType:      body.CaseType,
		Description:   body.Description,
		NextHearing:   body.NextHearing,
		Notes:         body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewCaseResponse(cs))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request", []string{err.Error()})
		return
	}

	cs, err := h.service.GetOwned(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewCaseResponse(cs))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request", []string{err.Error()})
		return
	}

	var body UpdateCaseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request body", []string{err.Error()})
		return
	}

	cs, err := h.service.Update(c.Request.Context(), uri.ID, auth.GetUserID(c), legalcase.UpdateRequest{
		CaseNumber:    body.CaseNumber,
		ClientName:    body.ClientName,
		OpposingParty: body.OpposingParty,
		CourtName:     body.CourtName,
		JudgeName:     body.JudgeName,
		Status:        body.Status,
		Priority:      body.Priority,
		CaseType:      body.CaseType,
		Description:   body.Description,
		NextHearing:   body.NextHearing,
		Notes:         body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewCaseResponse(cs))
}

// Delete removes the case together with its hearings.
func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request", []string{err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
