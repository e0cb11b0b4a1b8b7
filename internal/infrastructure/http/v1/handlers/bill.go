package handlers

import (
	"github.com/gin-gonic/gin"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/infrastructure/http/v1/dto"
)

// BillHandler serves the statement / bill endpoints: listings, detail with
// merged lines, the confirm lifecycle and payment registration.
type BillHandler struct {
	*BaseHandler
	manager *statement.Manager
	bills   *statement.BillService
}

// NewBillHandler creates a new bill handler.
func NewBillHandler(base *BaseHandler, manager *statement.Manager, bills *statement.BillService) *BillHandler {
	return &BillHandler{BaseHandler: base, manager: manager, bills: bills}
}

// List handles GET /bills?side=purchase|sale.
func (h *BillHandler) List(c *gin.Context) {
	filter, ok := h.parseListFilter(c)
	if !ok {
		return
	}

	result, err := h.bills.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Detail handles GET /bills/:id - statement with merged lines and payments.
func (h *BillHandler) Detail(c *gin.Context) {
	statementID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	detail, err := h.bills.Detail(c.Request.Context(), statementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, detail)
}

// Confirm handles POST /bills/:id/confirm - close the statement period.
// Events dated after the end date split off onto a fresh open statement.
func (h *BillHandler) Confirm(c *gin.Context) {
	statementID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.ConfirmStatementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.manager.Confirm(c.Request.Context(), statementID, req.EndDate.Time); err != nil {
		h.Error(c, err)
		return
	}

	st, err := h.manager.GetByID(c.Request.Context(), statementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, st)
}

// Unconfirm handles POST /bills/:id/unconfirm - reopen a confirmed
// statement. Only the most recently confirmed statement of a counterparty
// qualifies; its events merge back into the open one.
func (h *BillHandler) Unconfirm(c *gin.Context) {
	statementID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.manager.Unconfirm(c.Request.Context(), statementID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "statement reopened")
}

// Delete handles DELETE /bills/:id - soft delete an empty statement.
func (h *BillHandler) Delete(c *gin.Context) {
	statementID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.manager.Delete(c.Request.Context(), statementID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(204)
}

// SetInvoiceStatus handles POST /bills/:id/invoice-status.
func (h *BillHandler) SetInvoiceStatus(c *gin.Context) {
	statementID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.SetInvoiceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.manager.SetInvoiceStatus(c.Request.Context(), statementID, *req.Issued); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "invoice status updated")
}

// AddPayment handles POST /bills/:id/payments.
func (h *BillHandler) AddPayment(c *gin.Context) {
	statementID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.AddPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.manager.AddPayment(c.Request.Context(), statementID, req.Amount, req.PayDate.Time, req.Remark)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p)
}

// ListPayments handles GET /bills/:id/payments.
func (h *BillHandler) ListPayments(c *gin.Context) {
	statementID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	payments, err := h.manager.ListPayments(c.Request.Context(), statementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": payments})
}

// DeletePayment handles DELETE /bills/payments/:id.
func (h *BillHandler) DeletePayment(c *gin.Context) {
	paymentID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.manager.DeletePayment(c.Request.Context(), paymentID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(204)
}

func (h *BillHandler) parseListFilter(c *gin.Context) (statement.BillListFilter, bool) {
	var filter statement.BillListFilter
	var ok bool

	filter.Side = statement.Side(c.Query("side"))
	if !filter.Side.Valid() {
		h.Error(c, apperror.NewValidation("side must be purchase or sale").
			WithDetail("field", "side"))
		return filter, false
	}

	if filter.CounterpartyID, ok = h.ParseIDQuery(c, "counterpartyId"); !ok {
		return filter, false
	}
	filter.Confirmed = h.ParseBoolQuery(c, "confirmed")
	filter.SettledStatus = h.ParseBoolQuery(c, "settled")

	if filter.MinAmount, ok = h.parseMoneyQuery(c, "minAmount"); !ok {
		return filter, false
	}
	if filter.MaxAmount, ok = h.parseMoneyQuery(c, "maxAmount"); !ok {
		return filter, false
	}

	if filter.DateFrom, ok = h.ParseDateQuery(c, "dateFrom"); !ok {
		return filter, false
	}
	if filter.DateTo, ok = h.ParseDateQuery(c, "dateTo"); !ok {
		return filter, false
	}

	filter.Limit = h.ParseIntQuery(c, "limit", 20)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	return filter, true
}

func (h *BillHandler) parseMoneyQuery(c *gin.Context, key string) (*types.Money, bool) {
	val := c.Query(key)
	if val == "" {
		return nil, true
	}
	m, err := types.NewMoneyFromString(val)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid amount").WithDetail("field", key))
		return nil, false
	}
	return &m, true
}
