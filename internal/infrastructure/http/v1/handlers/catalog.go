// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/domain"
	domainFilter "tradeledger/internal/domain/filter"
	"tradeledger/internal/infrastructure/http/v1/dto"
)

// CatalogCRUD is the service surface the generic catalog handler needs.
// Concrete services may override individual methods (e.g. Create with
// revival semantics) and the handler picks the override up through this
// interface.
type CatalogCRUD[T entity.Validatable] interface {
	Create(ctx context.Context, ent T) error
	GetByID(ctx context.Context, entityID id.ID) (T, error)
	Update(ctx context.Context, ent T) error
	Delete(ctx context.Context, entityID id.ID) error
	Restore(ctx context.Context, entityID id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
}

// CatalogHandler provides generic HTTP handlers for catalog entities.
type CatalogHandler[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service    CatalogCRUD[T]
	entityName string

	// Mapper functions
	mapCreateDTO func(dto CreateDTO) T
	mapUpdateDTO func(dto UpdateDTO, existing T) T
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	Service      CatalogCRUD[T]
	EntityName   string
	MapCreateDTO func(dto CreateDTO) T
	MapUpdateDTO func(dto UpdateDTO, existing T) T
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T entity.Validatable, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T, CreateDTO, UpdateDTO],
) *CatalogHandler[T, CreateDTO, UpdateDTO] {
	return &CatalogHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		entityName:   cfg.EntityName,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
	}
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	ctx := c.Request.Context()

	// Parse filter from query params
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	// Structured JSON filter
	filterJSON := c.Query("filter")
	if filterJSON != "" {
		var advFilters []domainFilter.Item
		if err := json.Unmarshal([]byte(filterJSON), &advFilters); err != nil {
			h.Error(c, apperror.NewValidation("invalid filter format (json expected)"))
			return
		}
		filter.AdvancedFilters = advFilters
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Suggest handles GET /{entity}/suggest - name suggestions for entry forms.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Suggest(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("keyword")
	filter.Limit = h.ParseIntQuery(c, "limit", 20)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": result.Items})
}

// Get handles GET /{entity}/:id - get single entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	ent, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ent)
}

// Create handles POST /{entity} - create new entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	ent := h.mapCreateDTO(req)

	if err := h.service.Create(ctx, ent); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, ent)
}

// Update handles PUT /{entity}/:id - update existing entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	// Get existing entity
	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Map update DTO onto existing entity
	updated := h.mapUpdateDTO(req, existing)

	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Delete handles DELETE /{entity}/:id - soft delete entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, entityID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Restore handles POST /{entity}/:id/restore - revive soft-deleted entity.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Restore(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Restore(ctx, entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, h.entityName+" restored")
}
