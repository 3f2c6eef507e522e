package handlers

import (
	"net/http"

	"annexe9-backend/internal/domain"
	"annexe9-backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	payload := gin.H{
		"error": message,
		"code":  code,
	}
	if details != nil {
		payload["details"] = details
	}
	if reqID := middleware.GetRequestID(c); reqID != "" {
		payload["request_id"] = reqID
	}
	c.JSON(status, payload)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsTokenInvalid(err):
		respondError(c, http.StatusGone, "invalid_or_expired_token", "lien invalide ou expiré", nil)
	case domain.IsAlreadySigned(err):
		respondError(c, http.StatusConflict, "already_signed", "la commande est déjà signée", nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "une erreur interne est survenue", nil)
	}
}
