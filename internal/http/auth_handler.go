package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobsy/internal/backend"
	"jobsy/internal/domain"
	"jobsy/internal/service"
)

// AuthHandler expone el backend de identidad en /api/auth.
type AuthHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		userServ: userServ,
		jwtServ:  jwtServ,
	}
}

// Signup maneja POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email    string           `json:"email" binding:"required"`
		Password string           `json:"password" binding:"required"`
		Data     backend.Metadata `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "signup", err)
		return
	}

	user, err := h.userServ.CreateAccount(c.Request.Context(), service.CreateAccountInput{
		Email:    req.Email,
		Password: req.Password,
		UserType: req.Data.Role,
	})
	if err != nil {
		writeError(c, h.logger, "signup", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Identity()})
}

// RequestOTP maneja POST /api/auth/otp.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "otp", err)
		return
	}

	if _, err := h.userServ.RequestOTP(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.logger, "request otp", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// VerifyOTP maneja POST /api/auth/verify.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "otp verify", err)
		return
	}

	user, err := h.userServ.VerifyOTP(c.Request.Context(), req.Email, req.Token)
	if err != nil {
		writeError(c, h.logger, "verify otp", err)
		return
	}
	h.respondWithSession(c, user)
}

// Token maneja POST /api/auth/token (ingreso con contraseña).
func (h *AuthHandler) Token(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "login", err)
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, "login", err)
		return
	}
	h.respondWithSession(c, user)
}

// Refresh maneja POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "refresh", err)
		return
	}

	tokens, err := h.jwtServ.RefreshPair(req.RefreshToken)
	if err != nil {
		abortSessionMissing(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /api/auth/logout. Revocar un token ya invalido no es error.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "logout", err)
		return
	}
	if err := h.jwtServ.RevokeRefresh(req.RefreshToken); err != nil {
		h.logger.Debug("revoke refresh token failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// CurrentUser maneja GET /api/auth/user; requiere JWTAuthMiddleware.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		abortSessionMissing(c)
		return
	}

	user, err := h.userServ.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, h.logger, "current user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Identity()})
}

func (h *AuthHandler) respondWithSession(c *gin.Context, user domain.User) {
	tokens, err := h.jwtServ.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Identity(), "tokens": tokens})
}
