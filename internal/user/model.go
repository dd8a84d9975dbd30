package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/court-docket-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusForbidden, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password must be at least 8 characters")
)

// User is an advocate or clerk who owns cases and hearings.
type User struct {
	ID           string     `bson:"_id"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"passwordHash"`
	DisplayName  *string    `bson:"displayName,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty"`
	IsActive     bool       `bson:"isActive"`
}
