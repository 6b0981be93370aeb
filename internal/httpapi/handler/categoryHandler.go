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

type CategoryHandler struct {
	svc service.CategoryService
}

func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// RegisterRoutes mounts the category endpoints. Reads are public; writes
// require the admin role, checked in the handlers so anonymous and
// under-privileged callers get distinct answers.
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup, authOptional gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:slug", h.Get)
	rg.POST("", authOptional, h.Create)
	rg.PATCH("/:slug", authOptional, h.Update)
	rg.DELETE("/:slug", authOptional, h.Delete)
}

func (h *CategoryHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.List(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch category"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	s := subject(c)
	if !permissions.Allowed(s, permissions.ActionCreate, permissions.ResourceCatalog) {
		deny(c, s)
		return
	}

	var in dto.CreateCategoryDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, validationBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Create(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSlug):
			c.JSON(http.StatusBadRequest, gin.H{"slug": err.Error()})
		case errors.Is(err, service.ErrCategoryExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	s := subject(c)
	if !permissions.Allowed(s, permissions.ActionUpdate, permissions.ResourceCatalog) {
		deny(c, s)
		return
	}

	var in dto.UpdateCategoryDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, validationBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Update(ctx, c.Param("slug"), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrCategoryExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update category"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	s := subject(c)
	if !permissions.Allowed(s, permissions.ActionDelete, permissions.ResourceCatalog) {
		deny(c, s)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("slug")); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete category"})
		return
	}
	c.Status(http.StatusNoContent)
}
