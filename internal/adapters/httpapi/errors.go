package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"workledger/pkg/domain"
)

type errorResponse struct {
	Error      string             `json:"error"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var violation domain.RuleViolationError
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsInvalidQuantity(err), errors.As(err, &violation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}
	var violation domain.RuleViolationError
	if errors.As(err, &violation) {
		body.Violations = violation.Result.Violations
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "operation", op, "path", c.FullPath(), "error", err)
		body.Error = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func notFound(c *gin.Context, entity domain.EntityType, id string) {
	c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: domain.ErrNotFound{Entity: entity, ID: id}.Error()})
}
