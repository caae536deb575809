package controllers

import (
	"net/http"

	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/pkg/response"
)

// DeliveryController serves the static delivery fee tables.
type DeliveryController struct{}

func NewDeliveryController() *DeliveryController {
	return &DeliveryController{}
}

// Prices returns the per-state delivery fee table.
func (c *DeliveryController) Prices(w http.ResponseWriter, r *http.Request) {
	prices := models.AllDeliveryPrices()
	response.SuccessCount(w, prices, len(prices))
}

// Regions returns the list of deliverable states.
func (c *DeliveryController) Regions(w http.ResponseWriter, r *http.Request) {
	response.SuccessCount(w, models.States, len(models.States))
}
