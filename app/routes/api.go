// Package routes declares the HTTP surface of the storefront.
package routes

import (
	"net/http"

	"github.com/ritahmida/boutique/app/controllers"
	"github.com/ritahmida/boutique/pkg/metrics"
	"github.com/ritahmida/boutique/pkg/middleware"
	"github.com/ritahmida/boutique/pkg/rbac"
	"github.com/ritahmida/boutique/pkg/router"
	"github.com/ritahmida/boutique/pkg/ws"
)

// Controllers bundles the constructed controllers the API mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Product  *controllers.ProductController
	Order    *controllers.OrderController
	Delivery *controllers.DeliveryController
}

// RegisterAPI mounts every route. Admin routes sit behind the JWT auth
// middleware plus an admin role check.
func RegisterAPI(r *router.Router, c Controllers, orderHub *ws.Hub) {
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	// Public storefront.
	api.Get("/product", "product.index", c.Product.Index)
	api.Get("/catalog", "catalog.index", c.Product.Catalog)
	api.Get("/product/{id}", "product.show", c.Product.Show)
	api.Post("/order", "order.store", c.Order.Store)
	api.Get("/delivery/prices", "delivery.prices", c.Delivery.Prices)
	api.Get("/delivery/regions", "delivery.regions", c.Delivery.Regions)

	// Auth.
	api.Post("/auth/login", "auth.login", c.Auth.Login)
	api.Post("/auth/logout", "auth.logout", c.Auth.Logout)

	// Admin dashboard.
	admin := api.Group("", middleware.Auth, rbac.HasRole("admin"))
	admin.Get("/auth/check", "auth.check", c.Auth.Check)

	admin.Get("/order", "order.index", c.Order.Index)
	admin.Get("/order/summary", "order.summary", c.Order.Summary)
	admin.Get("/order/{id}", "order.show", c.Order.Show)
	admin.Post("/order/admin", "order.admin_store", c.Order.AdminStore)
	admin.Put("/order/{id}", "order.update", c.Order.Update)
	admin.Delete("/order/{id}", "order.destroy", c.Order.Destroy)

	admin.Post("/product", "product.store", c.Product.Store)
	admin.Put("/product/{id}", "product.update", c.Product.Update)
	admin.Delete("/product/{id}", "product.destroy", c.Product.Destroy)
	admin.Put("/product/{id}/variants", "product.variants", c.Product.ReplaceVariants)
	admin.Post("/product/{id}/media", "product.media.upload", c.Product.UploadMedia)
	admin.Put("/product/{id}/media", "product.media.reorder", c.Product.ReorderMedia)

	// Live order feed for the dashboard.
	r.Get("/ws/orders", "ws.orders", func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, orderHub)
	}, middleware.Auth, rbac.HasRole("admin"))
}
