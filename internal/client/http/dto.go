package http

import (
	"time"

	"github.com/nekogravitycat/court-docket-backend/internal/client"
)

type ClientResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	PANNumber    string    `json:"pan_number"`
	AadharNumber string    `json:"aadhar_number"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		PANNumber:    c.PANNumber,
		AadharNumber: c.AadharNumber,
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type CreateClientRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	Address      string `json:"address"`
	PANNumber    string `json:"pan_number"`
	AadharNumber string `json:"aadhar_number"`
	Notes        string `json:"notes"`
}

type UpdateClientRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	PANNumber    *string `json:"pan_number"`
	AadharNumber *string `json:"aadhar_number"`
	Notes        *string `json:"notes"`
}
