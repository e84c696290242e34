package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/service"
)

// GetOrderBySerial
// @Summary GetOrderBySerial
// @Description Get one order with its work set by serial
// @ID get-order-by-serial
// @Accept json
// @Produce json
// @Param serial path string true "order serial NNN-MM-YYYY" minlength(11) maxlength(11)
// @Success 200 {object} models.Order
// @Failure 400,404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/order/{serial} [get]
func (h *Handler) GetOrderBySerial(c *gin.Context) {
	serial := strings.TrimSpace(c.Param("serial"))
	if serial == "" {
		newErrorResponse(c, http.StatusBadRequest, "missing serial")
		return
	}

	order, err := h.orders.GetOrder(serial)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "order not found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetAllOrders
// @Summary GetAllOrders
// @Description List every order, ordered by serial
// @ID get-all-orders
// @Accept json
// @Produce json
// @Success 200 {object} getAllOrdersResponse
// @Failure 500 {object} errorResponse
// @Router /api/orders [get]
func (h *Handler) GetAllOrders(c *gin.Context) {
	orders, err := h.orders.GetAllOrders()
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, getAllOrdersResponse{Data: orders})
}

// GetNewSerial
// @Summary GetNewSerial
// @Description Next free order serial for the current month
// @ID get-new-serial
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} errorResponse
// @Router /api/order/new-serial [get]
func (h *Handler) GetNewSerial(c *gin.Context) {
	serial, err := h.orders.NewSerial()
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"serial": serial})
}

// CreateOrder
// @Summary CreateOrder
// @Description Create an order; serial is generated when omitted
// @ID create-order
// @Accept json
// @Produce json
// @Param order body models.Order true "order"
// @Success 201 {object} models.Order
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/order [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var order models.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "bad request body: "+err.Error())
		return
	}

	created, err := h.orders.CreateOrder(order)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			newErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusCreated, created)
}
