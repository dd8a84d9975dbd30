package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/court-docket-backend/internal/auth"
	"github.com/nekogravitycat/court-docket-backend/internal/client"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/request"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/response"
)

type Handler struct {
	service client.Service
}

func NewHandler(service client.Service) *Handler {
	return &Handler{service: service}
}

// List returns the current user's clients, newest first.
func (h *Handler) List(c *gin.Context) {
	clients, err := h.service.List(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ClientResponse, len(clients))
	for i, cl := range clients {
		items[i] = NewClientResponse(cl)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateClientRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request body", []string{err.Error()})
		return
	}

	cl, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), client.CreateRequest{
		Name:         body.Name,
		Email:        body.Email,
		Phone:        body.Phone,
		Address:      body.Address,
		PANNumber:    body.PANNumber,
		AadharNumber: body.AadharNumber,
		Notes:        body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewClientResponse(cl))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request", []string{err.Error()})
		return
	}

	cl, err := h.service.Get(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewClientResponse(cl))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request", []string{err.Error()})
		return
	}

	var body UpdateClientRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "invalid request body", []string{err.Error()})
		return
	}

	cl, err := h.service.Update(c.Request.Context(), uri.ID, auth.GetUserID(c), client.UpdateRequest{
		Name:         body.Name,
		Email:        body.Email,
		Phone:        body.Phone,
		Address:      body.Address,
		PANNumber:    body.PANNumber,
		AadharNumber: body.AadharNumber,
		Notes:        body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewClientResponse(cl))
}

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
