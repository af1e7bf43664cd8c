package http

import (
	"context"
	"net/http"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

// AuthHandler is the passthrough to the external identity provider. The
// token is opaque here; this service only relays it.
type AuthHandler struct {
	auth usecase.AuthService
}

func NewAuthHandler(auth usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type verifyTokenReq struct {
	Token string `json:"token" binding:"required"`
}

func (h *AuthHandler) VerifyToken(c *gin.Context) {
	var req verifyTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.New(apperr.Validation, "token is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.auth.VerifyToken(ctx, req.Token)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"user": gin.H{
		"uid":         profile.UID,
		"email":       profile.Email,
		"displayName": profile.DisplayName,
		"role":        profile.Role,
		"isActive":    profile.IsActive,
	}})
}

type customTokenReq struct {
	UID    string         `json:"uid" binding:"required"`
	Claims map[string]any `json:"additionalClaims"`
}

// CustomToken mints a provider token for a known uid. Staff only.
func (h *AuthHandler) CustomToken(c *gin.Context) {
	var req customTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.New(apperr.Validation, "uid is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	token, err := h.auth.CustomToken(ctx, req.UID, req.Claims)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"customToken": token})
}
