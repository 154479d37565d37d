package handler

import (
	"net/http"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes mounts comment routes nested under a title's review.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	Mount(rg, "comment_id", CRUD{
		Create:        h.Create,
		List:          h.List,
		Retrieve:      h.Retrieve,
		PartialUpdate: h.PartialUpdate,
		Delete:        h.Delete,
	}, middleware.RequireAuth())
}

// parentIDs parses the title_id and review_id path parameters.
func parentIDs(c *gin.Context) (titleID, reviewID int64, ok bool) {
	titleID, ok = pathID(c, "title_id")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok = pathID(c, "review_id")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func (h *CommentHandler) Create(c *gin.Context) {
	tid, rid, ok := parentIDs(c)
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), tid, rid, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) List(c *gin.Context) {
	tid, rid, ok := parentIDs(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)

	comments, err := h.commentService.List(c.Request.Context(), tid, rid, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Retrieve(c *gin.Context) {
	tid, rid, ok := parentIDs(c)
	if !ok {
		return
	}
	cid, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	comment, err := h.commentService.GetByID(c.Request.Context(), tid, rid, cid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) PartialUpdate(c *gin.Context) {
	tid, rid, ok := parentIDs(c)
	if !ok {
		return
	}
	cid, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.PartialUpdate(c.Request.Context(), tid, rid, cid, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	tid, rid, ok := parentIDs(c)
	if !ok {
		return
	}
	cid, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), tid, rid, cid, middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
