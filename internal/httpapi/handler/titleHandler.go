package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/permissions"
	"yamdb/internal/httpapi/repository"
	"yamdb/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	svc service.TitleService
}

func NewTitleHandler(svc service.TitleService) *TitleHandler {
	return &TitleHandler{svc: svc}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup, authOptional gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:title_id", h.Get)
	rg.POST("", authOptional, h.Create)
	rg.PATCH("/:title_id", authOptional, h.Update)
	rg.DELETE("/:title_id", authOptional, h.Delete)
}

// List handles GET /v1/titles with the combinable query filters: name,
// genre and category match by substring, year exactly.
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		Name:     c.Query("name"),
		Genre:    c.Query("genre"),
		Category: c.Query("category"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year filter"})
			return
		}
		filter.Year = &year
	}

	page, pageSize := pagination(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.List(ctx, filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list titles"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch title"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Create(c *gin.Context) {
	s := subject(c)
	if !permissions.Allowed(s, permissions.ActionCreate, permissions.ResourceCatalog) {
		deny(c, s)
		return
	}

	var in dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, validationBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Create(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrYearInFuture):
			c.JSON(http.StatusBadRequest, gin.H{"year": err.Error()})
		// a referenced slug that does not exist is a payload problem,
		// not a 404
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"category": err.Error()})
		case errors.Is(err, service.ErrGenreNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"genre": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create title"})
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TitleHandler) Update(c *gin.Context) {
	s := subject(c)
	if !permissions.Allowed(s, permissions.ActionUpdate, permissions.ResourceCatalog) {
		deny(c, s)
		return
	}

	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	var in dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, validationBody(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.svc.Update(ctx, id, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrYearInFuture):
			c.JSON(http.StatusBadRequest, gin.H{"year": err.Error()})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"category": err.Error()})
		case errors.Is(err, service.ErrGenreNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"genre": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update title"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	s := subject(c)
	if !permissions.Allowed(s, permissions.ActionDelete, permissions.ResourceCatalog) {
		deny(c, s)
		return
	}

	id, ok := parseID(c, "title_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete title"})
		return
	}
	c.Status(http.StatusNoContent)
}
