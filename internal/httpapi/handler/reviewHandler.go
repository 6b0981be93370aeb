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

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// RegisterRoutes mounts the review endpoints under a title. Reads are
// public; create needs any authenticated caller, update and delete the
// author or a moderator.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:review_id", h.Get)
	rg.POST("", authRequired, h.Create)
	rg.PATCH("/:review_id", authRequired, h.Update)
	rg.DELETE("/:review_id", authRequired, h.Delete)
}

func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	page, pageSize := pagination(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reviews"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := parseID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch review"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	s := subject(c)
	if !permissions.Allowed(s, permissions.ActionCreate, permissions.ResourceReview) {
		deny(c, s)
		return
	}

	titleID, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	var in dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, validationBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Create(ctx, titleID, c.GetString("userID"), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrReviewExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrScoreOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"score": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create review"})
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// authorize resolves ownership of the review before the permission
// check. Returns false after writing the response when the caller may
// not touch it.
func (h *ReviewHandler) authorize(c *gin.Context, titleID, reviewID int64, action permissions.Action) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	authorID, err := h.svc.AuthorID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch review"})
		return false
	}

	s := subject(c)
	s.IsOwner = authorID == c.GetString("userID")
	if !permissions.Allowed(s, action, permissions.ResourceReview) {
		deny(c, s)
		return false
	}
	return true
}

func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, ok := parseID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return
	}
	if !h.authorize(c, titleID, reviewID, permissions.ActionUpdate) {
		return
	}

	var in dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, validationBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Update(ctx, titleID, reviewID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrScoreOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"score": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update review"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, ok := parseID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return
	}
	if !h.authorize(c, titleID, reviewID, permissions.ActionDelete) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete review"})
		return
	}
	c.Status(http.StatusNoContent)
}
