package http

import (
	"errors"
	"net/http"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/logging"
	"github.com/gin-gonic/gin"
)

// ok writes the success envelope, merging extra fields into it.
func ok(c *gin.Context, status int, extra gin.H) {
	body := gin.H{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail maps the error taxonomy to a transport status and writes the failure
// envelope. Messages come from the taxonomy error only; wrapped driver
// errors (which may mention DSNs or hosts) are logged, never returned.
func fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	msg := "internal server error"
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}

	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		logging.From(c).Error("request failed", "kind", string(kind), "err", err)
	}

	c.JSON(status, gin.H{
		"success":   false,
		"message":   msg,
		"errorKind": string(kind),
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.VerificationFailed:
		return http.StatusUnauthorized
	case apperr.IllegalTransition, apperr.Conflict:
		return http.StatusConflict
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Gateway:
		return http.StatusBadGateway
	case apperr.Storage:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
