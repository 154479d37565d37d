package handler

import (
	"net/http"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes mounts review routes nested under a title. Writes need
// authentication; per-object ownership is enforced in the service.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	Mount(rg, "review_id", CRUD{
		Create:        h.Create,
		List:          h.List,
		Retrieve:      h.Retrieve,
		PartialUpdate: h.PartialUpdate,
		Delete:        h.Delete,
	}, middleware.RequireAuth())
}

func (h *ReviewHandler) Create(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), tid, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) List(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)

	reviews, err := h.reviewService.List(c.Request.Context(), tid, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) Retrieve(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := pathID(c, "review_id")
	if !ok {
		return
	}

	review, err := h.reviewService.GetByID(c.Request.Context(), tid, rid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) PartialUpdate(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := pathID(c, "review_id")
	if !ok {
		return
	}

	var req dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewService.PartialUpdate(c.Request.Context(), tid, rid, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	tid, ok := titleID(c)
	if !ok {
		return
	}
	rid, ok := pathID(c, "review_id")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), tid, rid, middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
