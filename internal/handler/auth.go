package handler

import (
	"errors"
	"net/http"

	"fieldsync/internal/apierror"
	"fieldsync/internal/dto"
	"fieldsync/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SaveCredentials stores the officer's login on the device and resets the
// session so the next sync has to re-authenticate with them.
func (h *AuthHandler) SaveCredentials(c *gin.Context) {
	var req dto.SaveCredentialsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.auth.SaveCredentials(c.Request.Context(), req.Username, req.Password); err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "credentials saved"})
}

// OfflineLogin unlocks the app against the cached hash, no network needed.
func (h *AuthHandler) OfflineLogin(c *gin.Context) {
	var req dto.OfflineLoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	err := h.auth.VerifyOffline(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrNoCredentials):
		c.JSON(http.StatusNotFound, apierror.New("no stored credentials; connect once to log in"))
		return
	case err != nil:
		c.JSON(http.StatusUnauthorized, apierror.New("invalid credentials"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "ok"})
}

func (h *AuthHandler) Status(c *gin.Context) {
	status, err := h.auth.Status(c.Request.Context())
	if err != nil {
		c.Error(err) //nolint:errcheck
		return
	}
	c.JSON(http.StatusOK, status)
}
