package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/logger"
	"boxoffice/internal/models"
	"boxoffice/internal/service"
)

// Handlers serves the ledger API
type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		services: services,
	}
}

// respondError maps service errors to the ledger status codes
func respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msg + ": not found"})
	default:
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// Sales handlers

// ListSales - GET /api/sales
// Получить все продажи, новые первыми
func (h *Handlers) ListSales(c *gin.Context) {
	sales, err := h.services.Sales.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list sales")
		return
	}

	c.JSON(http.StatusOK, models.ListSalesResponse(sales))
}

// CreateSale - POST /api/sales
// Зарегистрировать продажу
func (h *Handlers) CreateSale(c *gin.Context) {
	var req models.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := h.services.Sales.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create sale")
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// DeleteSale - DELETE /api/sales/:id
// Удалить продажу; места освободятся при следующей сверке терминалов
func (h *Handlers) DeleteSale(c *gin.Context) {
	if err := h.services.Sales.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete sale")
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchSales - GET /api/sales/search
// Поиск продаж по покупателю, дате и ученику
func (h *Handlers) SearchSales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}

	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	sales, err := h.services.Sales.Search(c.Request.Context(), models.SearchSalesParams{
		Query:     c.Query("query"),
		Date:      c.Query("date"),
		StudentID: c.Query("student_id"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondError(c, err, "Failed to search sales")
		return
	}

	c.JSON(http.StatusOK, models.ListSalesResponse(sales))
}

// GetSaleBySeat - GET /api/sales/seat/:seat_id
// Найти продажу, в которую входит место
func (h *Handlers) GetSaleBySeat(c *gin.Context) {
	seatID := c.Param("seat_id")

	sale, err := h.services.Sales.FindBySeat(c.Request.Context(), seatID)
	if err != nil {
		respondError(c, err, "Failed to find sale for seat")
		return
	}

	c.JSON(http.StatusOK, models.SeatSaleResponse{SeatID: seatID, Sale: sale})
}

// SalesStats - GET /api/sales/stats
// Сводка: количество продаж, билетов и выручка
func (h *Handlers) SalesStats(c *gin.Context) {
	stats, err := h.services.Sales.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get sales stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
