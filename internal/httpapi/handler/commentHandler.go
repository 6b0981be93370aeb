package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/permissions"
	"yamdb/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:comment_id", h.Get)
	rg.POST("", authRequired, h.Create)
	rg.PATCH("/:comment_id", authRequired, h.Update)
	rg.DELETE("/:comment_id", authRequired, h.Delete)
}

// chain pulls title_id and review_id from the path; both must be
// positive integers.
func chain(c *gin.Context) (titleID, reviewID int64, ok bool) {
	titleID, ok = parseID(c, "title_id")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok = parseID(c, "review_id")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := chain(c)
	if !ok {
		return
	}

	page, pageSize := pagination(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.ListByReview(ctx, titleID, reviewID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := chain(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.GetByID(ctx, titleID, reviewID, commentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound),
			errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch comment"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Create(c *gin.Context) {
	s := subject(c)
	if !permissions.Allowed(s, permissions.ActionCreate, permissions.ResourceComment) {
		deny(c, s)
		return
	}

	titleID, reviewID, ok := chain(c)
	if !ok {
		return
	}

	var in dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, validationBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Create(ctx, titleID, reviewID, c.GetString("userID"), in.Text)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create comment"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CommentHandler) authorize(c *gin.Context, titleID, reviewID, commentID int64, action permissions.Action) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	authorID, err := h.svc.AuthorID(ctx, titleID, reviewID, commentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound),
			errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch comment"})
		}
		return false
	}

	s := subject(c)
	s.IsOwner = authorID == c.GetString("userID")
	if !permissions.Allowed(s, action, permissions.ResourceComment) {
		deny(c, s)
		return false
	}
	return true
}

func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := chain(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}
	if !h.authorize(c, titleID, reviewID, commentID, permissions.ActionUpdate) {
		return
	}

	var in dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, validationBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Update(ctx, titleID, reviewID, commentID, in.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound),
			errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update comment"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := chain(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "comment_id")
	if !ok {
		return
	}
	if !h.authorize(c, titleID, reviewID, commentID, permissions.ActionDelete) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, titleID, reviewID, commentID); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound),
			errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete comment"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
