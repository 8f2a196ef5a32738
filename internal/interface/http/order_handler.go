package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/khadamatapp/marketplace-api/internal/application"
	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	"github.com/khadamatapp/marketplace-api/pkg/response"
	"github.com/khadamatapp/marketplace-api/pkg/validation"
)

type OrderHandler struct {
	Svc    *app.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(svc *app.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

type createOrderRequest struct {
	ServiceID    string     `json:"service_id" binding:"required,uuid"`
	ProviderID   string     `json:"provider_id" binding:"required,uuid"`
	Price        float64    `json:"price" binding:"gte=0"`
	Requirements string     `json:"requirements"`
	DeliveryDate *time.Time `json:"delivery_date"`
}

type updateOrderRequest struct {
	Status        *string    `json:"status"`
	PaymentStatus *string    `json:"payment_status"`
	Requirements  *string    `json:"requirements"`
	DeliveryDate  *time.Time `json:"delivery_date"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	o, err := h.Svc.CreateOrder(c.Request.Context(), app.CreateOrderInput{
		UserID:       c.GetString("userID"),
		ServiceID:    req.ServiceID,
		ProviderID:   req.ProviderID,
		Price:        req.Price,
		Requirements: req.Requirements,
		DeliveryDate: req.DeliveryDate,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, orderJSON(o), "order created", nil)
}

func (h *OrderHandler) List(c *gin.Context) {
	status := entity.OrderStatus(c.Query("status"))
	if status != "" && !entity.ValidStatus(status) {
		response.Error[any](c, http.StatusBadRequest, "invalid status", nil)
		return
	}
	list, err := h.Svc.ListOrders(c.Request.Context(), c.GetString("userID"), status)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ordersJSON(list), "orders", gin.H{"count": len(list)})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	o, err := h.Svc.GetOrder(c.Request.Context(), id, c.GetString("userID"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, orderJSON(o), "order", nil)
}

func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := app.UpdateOrderInput{
		Requirements: req.Requirements,
		DeliveryDate: req.DeliveryDate,
	}
	if req.Status != nil {
		st := entity.OrderStatus(*req.Status)
		if !entity.ValidStatus(st) {
			response.Error[any](c, http.StatusBadRequest, "invalid status", nil)
			return
		}
		in.Status = &st
	}
	if req.PaymentStatus != nil {
		ps := entity.PaymentStatus(*req.PaymentStatus)
		in.PaymentStatus = &ps
	}

	o, err := h.Svc.UpdateOrder(c.Request.Context(), id, c.GetString("userID"), in)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, orderJSON(o), "order updated", nil)
}
