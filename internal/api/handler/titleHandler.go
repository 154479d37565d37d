package handler

import (
	"net/http"
	"strconv"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

// RegisterRoutes mounts the title routes: reads are open, writes are
// admin-only.
func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	Mount(rg, "title_id", CRUD{
		Create:        h.Create,
		List:          h.List,
		Retrieve:      h.Retrieve,
		PartialUpdate: h.PartialUpdate,
		Delete:        h.Delete,
	}, middleware.RequireAdmin())
}

func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, err := h.titleService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

func (h *TitleHandler) List(c *gin.Context) {
	var filter dto.TitleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, pageSize := pageParams(c)

	titles, err := h.titleService.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, titles)
}

func (h *TitleHandler) Retrieve(c *gin.Context) {
	id, ok := titleID(c)
	if !ok {
		return
	}

	title, err := h.titleService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

func (h *TitleHandler) PartialUpdate(c *gin.Context) {
	id, ok := titleID(c)
	if !ok {
		return
	}

	var req dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, err := h.titleService.PartialUpdate(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := titleID(c)
	if !ok {
		return
	}

	if err := h.titleService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// titleID parses the title_id path parameter; a non-numeric id answers
// 404 because no such resource can exist.
func titleID(c *gin.Context) (int64, bool) {
	return pathID(c, "title_id")
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
