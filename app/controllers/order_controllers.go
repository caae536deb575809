package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/app/repositories"
	"github.com/ritahmida/boutique/app/services"
	"github.com/ritahmida/boutique/pkg/bind"
	"github.com/ritahmida/boutique/pkg/logger"
	"github.com/ritahmida/boutique/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Index returns every order, newest first.
func (c *OrderController) Index(w http.ResponseWriter, r *http.Request) {
	orders, err := c.service.List()
	if err != nil {
		logger.WithCtx(r.Context()).Error("order: list failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	response.SuccessCount(w, orders, len(orders))
}

// Summary returns the per-status order counts for the dashboard header.
func (c *OrderController) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := c.service.Summary()
	if err != nil {
		logger.WithCtx(r.Context()).Error("order: summary failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	response.Success(w, counts)
}

// Show returns one order with its product.
func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	order, err := c.service.Get(id)
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Success(w, order)
}

// Store places an order from the storefront. One unit of the chosen
// variant's stock is consumed atomically with the insert. Storefront
// orders always start in waiting.
func (c *OrderController) Store(w http.ResponseWriter, r *http.Request) {
	c.create(w, r, false)
}

// AdminStore places an order on behalf of a customer (phone orders).
// Unlike the public endpoint, the admin may set the initial status.
func (c *OrderController) AdminStore(w http.ResponseWriter, r *http.Request) {
	c.create(w, r, true)
}

func (c *OrderController) create(w http.ResponseWriter, r *http.Request, allowStatus bool) {
	var in services.CreateOrderInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if !allowStatus {
		in.Status = ""
	}
	if !models.ValidState(in.State) {
		response.ValidationError(w, map[string]string{"state": "unknown state"})
		return
	}

	order, err := c.service.Create(in)
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Created(w, order)
}

// Update applies a partial order edit. Status changes follow the numeric
// contract (1=waiting, 2=delivering, 3=delivered, 4=canceled) and the
// transition table; crossing the canceled boundary reconciles stock.
func (c *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var patch services.OrderPatch
	if errs, err := bind.JSON(r, &patch); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if patch.State != nil && !models.ValidState(*patch.State) {
		response.ValidationError(w, map[string]string{"state": "unknown state"})
		return
	}
	if patch.Delivery != nil && *patch.Delivery != models.DeliveryHome && *patch.Delivery != models.DeliveryCenter {
		response.ValidationError(w, map[string]string{"delivery": "must be home or center"})
		return
	}

	order, err := c.service.Update(id, patch)
	if err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Success(w, order)
}

// Destroy deletes an order, returning its unit of stock first unless the
// order was already canceled or the variant row is gone.
func (c *OrderController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	if err := c.service.Delete(id); err != nil {
		c.renderError(w, r, err)
		return
	}
	response.Message(w, "Order deleted")
}

// renderError maps domain errors onto HTTP statuses.
func (c *OrderController) renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repositories.ErrOrderNotFound):
		response.NotFound(w, "Order not found")
	case errors.Is(err, repositories.ErrProductNotFound):
		response.NotFound(w, "Product not found")
	case errors.Is(err, services.ErrVariantNotFound),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, models.ErrInvalidStatusTransition),
		errors.Is(err, models.ErrInvalidStatusNumber):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("order: operation failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func orderID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.Error(w, http.StatusBadRequest, "Invalid order id")
		return 0, false
	}
	return uint(id), true
}
