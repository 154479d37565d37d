package handler

import (
	"net/http"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// RegisterRoutes mounts the category routes: anyone can list, only
// admins create or delete, and there is no per-item retrieve or update.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	Mount(rg, "slug", CRUD{
		Create: h.Create,
		List:   h.List,
		Delete: h.Delete,
	}, middleware.RequireAdmin())
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToCategoryResponse(category))
}

func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	search := c.Query("search")

	categories, err := h.categoryService.List(c.Request.Context(), search, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
