package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/court-docket-backend/internal/auth"
	"github.com/nekogravitycat/court-docket-backend/internal/hearing"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/request"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/response"
)

type Handler struct {
	service hearing.Service
}

func NewHandler(service hearing.Service) *Handler {
	return &Handler{service: service}
}

// writeError answers validation failures with every message and conflicts with the
// clashing hearings, falling back to the AppError mapping.
func writeError(c *gin.Context, err error) {
	var vErr *hearing.ValidationError
	if errors.As(err, &vErr) {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "invalid hearing data", vErr.Errors)
		return
	}

	var cErr *hearing.ConflictError
	if errors.As(err, &cErr) {
		c.JSON(http.StatusConflict, ConflictErrorResponse{
			Error:     "hearing conflicts with existing hearings",
			Conflicts: NewConflictResponses(cErr.Conflicts),
		})
		return
	}

	response.Error(c, err)
}

func listResponse(hearings []*hearing.Hearing) response.ListResponse[HearingResponse] {
	items := make([]HearingResponse, len(hearings))
	for i, h := range hearings {
		items[i] = NewHearingResponse(h)
	}
	return response.NewListResponse(items)
}

// List returns all of the user's hearings, latest hearing date first.
func (h *Handler) List(c *gin.Context) {
	hearings, err := h.service.List(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(hearings))
}

func (h *Handler) ListByCase(c *gin.Context) {
	var req request.ByCaseIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request", []string{err.Error()})
		return
	}

	hearings, err := h.service.ListByCase(c.Request.Context(), req.CaseID, auth.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(hearings))
}

// ListToday returns today's hearings in the requested timezone, earliest first.
func (h *Handler) ListToday(c *gin.Context) {
	var req ListTodayRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid query parameters", []string{err.Error()})
		return
	}

	hearings, err := h.service.ListToday(c.Request.Context(), auth.GetUserID(c), req.Timezone)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(hearings))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request", []string{err.Error()})
		return
	}

	hr, err := h.service.GetByID(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewHearingResponse(hr))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateHearingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request body", []string{err.Error()})
		return
	}

	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	hr, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), body.input(&body.CaseID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewHearingResponse(hr))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request", []string{err.Error()})
		return
	}

	var body UpdateHearingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request body", []string{err.Error()})
		return
	}

	hr, err := h.service.Update(c.Request.Context(), uri.ID, auth.GetUserID(c), body.input(body.CaseID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewHearingResponse(hr))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request", []string{err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID, auth.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckConflicts validates a draft and reports clashes without saving anything.
// Invalid drafts are answered with 200 and valid=false so the form can show every error.
func (h *Handler) CheckConflicts(c *gin.Context) {
	var body CheckConflictsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request body", []string{err.Error()})
		return
	}

	res, err := h.service.CheckConflicts(c.Request.Context(), auth.GetUserID(c), body.HearingID, body.input(nil))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewCheckConflictsResponse(res))
}
