package handlers

import (
	"github.com/gin-gonic/gin"

	"tradeledger/internal/domain/expense"
	"tradeledger/internal/infrastructure/http/v1/dto"
)

// ExpenseHandler serves the operating expense endpoints.
type ExpenseHandler struct {
	*BaseHandler
	service *expense.Service
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(base *BaseHandler, service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{BaseHandler: base, service: service}
}

// Create handles POST /expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, e)
}

// Get handles GET /expenses/:id.
func (h *ExpenseHandler) Get(c *gin.Context) {
	expenseID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), expenseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// Update handles PUT /expenses/:id.
func (h *ExpenseHandler) Update(c *gin.Context) {
	expenseID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e, err := h.service.Update(c.Request.Context(), expenseID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// Delete handles DELETE /expenses/:id.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	expenseID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), expenseID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(204)
}

// List handles GET /expenses.
func (h *ExpenseHandler) List(c *gin.Context) {
	var filter expense.ListFilter
	var ok bool

	filter.Search = c.Query("search")
	filter.Type = c.Query("type")
	if filter.DateFrom, ok = h.ParseDateQuery(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.ParseDateQuery(c, "dateTo"); !ok {
		return
	}
	filter.Limit = h.ParseIntQuery(c, "limit", 20)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
