// Package auth serves registration, login and token refresh.
package auth

import (
	"errors"
	"net/http"

	"menufic/apperr"
	"menufic/model"
	"menufic/service"
	"menufic/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc    *service.Service
	tokens *utils.Tokens
}

func NewHandler(svc *service.Service, tokens *utils.Tokens) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *model.User `json:"user,omitempty"`
}

func (h *Handler) issue(c *gin.Context, status int, message string, user *model.User) {
	access, refresh, err := h.tokens.GenerateTokens(user.ID)
	if err != nil {
		utils.RespondError(c, apperr.Internal("Failed to generate tokens", err))
		return
	}
	utils.Respond(c, status, message, tokenResponse{AccessToken: access, RefreshToken: refresh, User: user})
}

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Name     string `json:"name"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("Email and password are required"))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.issue(c, http.StatusCreated, "Registered successfully", user)
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Validation("Email and password are required"))
		return
	}

	user, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.issue(c, http.StatusOK, "Logged in successfully", user)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, apperr.Unauthorized("Refresh token is required"))
		return
	}

	claims, err := h.tokens.ValidateToken(req.RefreshToken, utils.RefreshToken)
	if err != nil {
		msg := "Invalid refresh token"
		if errors.Is(err, utils.ErrTokenExpired) {
			msg = "Refresh token has expired"
		}
		utils.RespondError(c, apperr.Unauthorized(msg))
		return
	}
	user, err := h.svc.GetUser(c.Request.Context(), claims.Subject)
	if apperr.Is(err, apperr.KindNotFound) {
		utils.RespondError(c, apperr.Unauthorized("Invalid refresh token"))
		return
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.issue(c, http.StatusOK, "Tokens refreshed successfully", user)
}
