package handlers

import (
	"net/http"

	"annexe9-backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "corps de requête vide", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "payload invalide", err)
		return false
	}
	return true
}

// ParamUUID parses a uuid path parameter, responding 400 on garbage.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "identifiant invalide", err)
		return uuid.Nil, false
	}
	return id, true
}
