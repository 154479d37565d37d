package handler

import (
	"net/http"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers the user management routes. The whole
// collection is admin-only except the /me alias, which any
// authenticated user can read and edit.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", middleware.RequireAuth(), h.Me)
	rg.PATCH("/me", middleware.RequireAuth(), h.UpdateMe)

	admin := middleware.RequireAdmin()
	rg.POST("", admin, h.Create)
	rg.GET("", admin, h.List)
	rg.GET("/:username", admin, h.Retrieve)
	rg.PATCH("/:username", admin, h.PartialUpdate)
	rg.DELETE("/:username", admin, h.Delete)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToUserResponse(user))
}

func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	search := c.Query("search")

	users, err := h.userService.List(c.Request.Context(), search, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Retrieve(c *gin.Context) {
	user, err := h.userService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

func (h *UserHandler) PartialUpdate(c *gin.Context) {
	var req dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.PartialUpdate(c.Request.Context(), c.Param("username"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// UpdateMe edits the caller's own profile; the service ignores any role
// field in the payload.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateSelf(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}
