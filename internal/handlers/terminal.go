package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/inventory"
	"boxoffice/internal/logger"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/reconcile"
	"boxoffice/internal/sale"
)

// TerminalHandlers serves the local API of one box-office terminal
type TerminalHandlers struct {
	store   *inventory.Store
	builder *sale.Builder
	engine  *reconcile.Engine
	metrics *metrics.Metrics
}

func NewTerminalHandlers(store *inventory.Store, builder *sale.Builder, engine *reconcile.Engine, m *metrics.Metrics) *TerminalHandlers {
	return &TerminalHandlers{
		store:   store,
		builder: builder,
		engine:  engine,
		metrics: m,
	}
}

func (h *TerminalHandlers) selection() models.SelectionResponse {
	seats := h.store.Selection()
	return models.SelectionResponse{Seats: seats, Count: len(seats)}
}

// ListSeats - GET /api/seats
// Каталог мест с текущими статусами
func (h *TerminalHandlers) ListSeats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Seats())
}

// GetSelection - GET /api/selection
func (h *TerminalHandlers) GetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, h.selection())
}

// SelectSeat - PATCH /api/seats/select
// Добавить место в выбор; занятые и заблокированные места не меняются
func (h *TerminalHandlers) SelectSeat(c *gin.Context) {
	h.toggle(c, h.store.Select)
}

// DeselectSeat - PATCH /api/seats/deselect
func (h *TerminalHandlers) DeselectSeat(c *gin.Context) {
	h.toggle(c, h.store.Deselect)
}

func (h *TerminalHandlers) toggle(c *gin.Context, op func(string) (bool, error)) {
	var req models.SeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changed, err := op(req.SeatID)
	if errors.Is(err, inventory.ErrUnknownSeat) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seat not found"})
		return
	}

	seat, _ := h.store.Seat(req.SeatID)
	c.JSON(http.StatusOK, gin.H{
		"changed":   changed,
		"seat":      seat,
		"selection": h.selection(),
	})
}

// ClearSelection - PATCH /api/selection/clear
// Отменить выбор
func (h *TerminalHandlers) ClearSelection(c *gin.Context) {
	released := h.store.ClearSelection()
	c.JSON(http.StatusOK, gin.H{"released": released, "selection": h.selection()})
}

// SubmitSale - POST /api/sale
// Оформить продажу выбранных мест
func (h *TerminalHandlers) SubmitSale(c *gin.Context) {
	var req models.SubmitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.builder.Submit(c.Request.Context(), sale.Request{
		BuyerName:  req.BuyerName,
		BuyerPhone: req.BuyerPhone,
		StudentID:  req.StudentID,
	})

	var verr *sale.ValidationError
	switch {
	case err == nil:
		h.countSubmit("created")
		c.JSON(http.StatusCreated, created)
	case errors.As(err, &verr):
		h.countSubmit("invalid")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, apperrors.ErrInvalidInput):
		// реестр отклонил данные покупателя, повтор не поможет
		h.countSubmit("rejected")
		logger.WithContext(c.Request.Context()).Warn("Sale rejected by ledger, selection kept", "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrLedgerUnavailable):
		h.countSubmit("ledger_unavailable")
		logger.WithContext(c.Request.Context()).Warn("Sale not recorded, selection kept", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sales ledger unavailable, selection kept"})
	default:
		h.countSubmit("error")
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error("Failed to submit sale", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit sale"})
	}
}

func (h *TerminalHandlers) countSubmit(result string) {
	if h.metrics != nil {
		h.metrics.SalesSubmitted.WithLabelValues(result).Inc()
	}
}

// Reconcile - POST /api/reconcile
// Принудительная сверка с реестром продаж
func (h *TerminalHandlers) Reconcile(c *gin.Context) {
	result, err := h.engine.RunOnce(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sales ledger unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sold":      result.Sold,
		"reopened":  result.Reopened,
		"conflicts": result.Conflicts,
		"unknown":   result.Unknown,
	})
}

// Panel - GET /api/panel
// Заполненность зала по секторам
func (h *TerminalHandlers) Panel(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Occupancy())
}

// Stream - GET /api/stream
// Server-Sent Events: снимок после каждого изменения
func (h *TerminalHandlers) Stream(c *gin.Context) {
	changes := make(chan inventory.Change, 16)
	cancel := h.store.Subscribe(func(change inventory.Change) {
		select {
		case changes <- change:
		default:
			// slow client; it catches up on the next change
		}
	})
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	snap := h.store.Snapshot()
	c.SSEvent("snapshot", inventory.Change{Kind: "snapshot", Seats: snap.Seats, Selected: snap.Selected})
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case change := <-changes:
			c.SSEvent(string(change.Kind), change)
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
