package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobsy/internal/backend"
	"jobsy/internal/domain"
	"jobsy/internal/service"
)

// ProfileHandler expone el almacen de perfiles en /api/profiles. Solo el dueño lee o escribe.
type ProfileHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
}

func NewProfileHandler(logger *zap.Logger, profileServ *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{logger: logger, profileServ: profileServ}
}

// Get maneja GET /api/profiles/:id.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := h.owner(c, c.Param("id"))
	if !ok {
		return
	}

	profile, err := h.profileServ.Find(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, "find profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Create maneja POST /api/profiles.
func (h *ProfileHandler) Create(c *gin.Context) {
	var req domain.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create profile", err)
		return
	}
	userID, ok := h.owner(c, req.ID)
	if !ok {
		return
	}
	req.ID = userID

	profile, err := h.profileServ.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "create profile", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}

// Update maneja PATCH /api/profiles/:id.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := h.owner(c, c.Param("id"))
	if !ok {
		return
	}
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "update profile", err)
		return
	}

	profile, err := h.profileServ.Update(c.Request.Context(), userID, patch)
	if err != nil {
		writeError(c, h.logger, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// owner exige que id sea el del token; un id vacio se completa con el del token.
func (h *ProfileHandler) owner(c *gin.Context, id string) (string, bool) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		abortSessionMissing(c)
		return "", false
	}
	if id == "" {
		return claims.UserID, true
	}
	if id != claims.UserID {
		c.JSON(backend.ErrForbidden.Status, gin.H{"error": backend.ErrForbidden.Message, "code": backend.ErrForbidden.Code})
		return "", false
	}
	return id, true
}
