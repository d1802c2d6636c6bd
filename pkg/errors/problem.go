package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ProblemDetails represents an RFC 7807 compliant error response.
type ProblemDetails struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Status    int       `json:"status"`
	Detail    string    `json:"detail"`
	Instance  string    `json:"instance,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Problem type URIs
const (
	TypeValidationError = "https://api.novatoken.io/errors/validation-error"
	TypeForbidden       = "https://api.novatoken.io/errors/forbidden"
	TypeNotFound        = "https://api.novatoken.io/errors/not-found"
	TypeInvalidState    = "https://api.novatoken.io/errors/invalid-state"
	TypeConflict        = "https://api.novatoken.io/errors/conflict"
	TypeInternalError   = "https://api.novatoken.io/errors/internal-error"
)

// NewProblemDetails creates an RFC 7807 problem document.
func NewProblemDetails(problemType, title string, status int, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:      problemType,
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  instance,
		Timestamp: time.Now().UTC(),
	}
}

// ToProblemDetails converts a domain error to its RFC 7807 representation.
// Unrecognized errors become an internal server error with the detail
// suppressed.
func ToProblemDetails(err error, instance string) *ProblemDetails {
	var (
		notFound     *NotFoundError
		authz        *AuthorizationError
		invalidState *InvalidStateError
		validation   *ValidationError
		conflict     *ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		return NewProblemDetails(TypeNotFound, "Not Found", http.StatusNotFound, notFound.Error(), instance)
	case errors.As(err, &authz):
		return NewProblemDetails(TypeForbidden, "Forbidden", http.StatusForbidden, authz.Error(), instance)
	case errors.As(err, &invalidState):
		return NewProblemDetails(TypeInvalidState, "Invalid State", http.StatusConflict, invalidState.Error(), instance)
	case errors.As(err, &validation):
		return NewProblemDetails(TypeValidationError, "Validation Error", http.StatusBadRequest, validation.Error(), instance)
	case errors.As(err, &conflict):
		return NewProblemDetails(TypeConflict, "Conflict", http.StatusConflict, conflict.Error(), instance)
	default:
		return NewProblemDetails(TypeInternalError, "Internal Server Error", http.StatusInternalServerError, "an internal error occurred", instance)
	}
}

// Respond writes err as an application/problem+json response.
func Respond(c *gin.Context, err error) {
	pd := ToProblemDetails(err, c.Request.URL.Path)
	c.Header("Content-Type", "application/problem+json")
	c.JSON(pd.Status, pd)
}
