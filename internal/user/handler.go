package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uvbuddy/uvbuddy-api/internal/auth"
	"github.com/uvbuddy/uvbuddy-api/internal/middleware"
)

// Handler exposes HTTP endpoints for registration, login and the password
// recovery flow. Request bodies are validated by gin binding before any
// business logic runs.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload"})
		return
	}
	if err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "user already exists"})
			return
		}
		h.logger.Errorw("register failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully"})
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload"})
		return
	}
	token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "user not found"})
		case errors.Is(err, ErrBadCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		default:
			h.logger.Errorw("login failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "login failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Profile is the protected greeting endpoint; the auth gate has already
// attached the identity to the request context.
func (h *Handler) Profile(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": fmt.Sprintf("hello %s, your user id is %s", id.Email, id.UserID),
	})
}

// ForgotPasswordRequest payload for the recovery endpoint.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload"})
		return
	}
	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		case errors.Is(err, ErrSendMail):
			h.logger.Errorw("recovery email dispatch failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "error sending email"})
		default:
			h.logger.Errorw("forgot-password failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "password recovery failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recovery email sent"})
}

// ResetPasswordRequest payload for the reset endpoint.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload"})
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid or expired token"})
			return
		}
		h.logger.Errorw("reset-password failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "password reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset successfully"})
}
