package client

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/apperror"
)

var (
	// ErrNotFound also covers clients owned by someone else.
	ErrNotFound      = apperror.New(http.StatusNotFound, "client not found")
	ErrNameRequired  = apperror.New(http.StatusBadRequest, "client name is required")
	ErrEmailRequired = apperror.New(http.StatusBadRequest, "client email is required")
	ErrPhoneRequired = apperror.New(http.StatusBadRequest, "client phone is required")
)

// Client is a person or business a user represents. Hearings refer to clients
// through their resource scope.
type Client struct {
	ID           string    `bson:"_id"`
	Owner        string    `bson:"owner"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Phone        string    `bson:"phone"`
	Address      string    `bson:"address"`
	PANNumber    string    `bson:"panNumber"`
	AadharNumber string    `bson:"aadharNumber"`
	Notes        string    `bson:"notes"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// Field names understood by the repositories' Query method.
const (
	FieldOwner     = "owner"
	FieldEmail     = "email"
	FieldCreatedAt = "createdAt"
)
