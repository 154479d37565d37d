package handler

import (
	"net/http"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type GenreHandler struct {
	genreService service.GenreService
}

func NewGenreHandler(genreService service.GenreService) *GenreHandler {
	return &GenreHandler{genreService: genreService}
}

// RegisterRoutes mounts the genre routes, same shape as categories.
func (h *GenreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	Mount(rg, "slug", CRUD{
		Create: h.Create,
		List:   h.List,
		Delete: h.Delete,
	}, middleware.RequireAdmin())
}

func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.CreateGenreDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genre, err := h.genreService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToGenreResponse(genre))
}

func (h *GenreHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	search := c.Query("search")

	genres, err := h.genreService.List(c.Request.Context(), search, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.genreService.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
