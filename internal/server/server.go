// Package server boots the storefront: config, database, cache, storage,
// queue workers, scheduler, optional gRPC health server, and the HTTP API
// with graceful shutdown.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ritahmida/boutique/app/controllers"
	"github.com/ritahmida/boutique/app/jobs"
	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/app/routes"
	"github.com/ritahmida/boutique/app/services"
	"github.com/ritahmida/boutique/config"
	"github.com/ritahmida/boutique/database/seeders"
	"github.com/ritahmida/boutique/pkg/cache"
	"github.com/ritahmida/boutique/pkg/collection"
	"github.com/ritahmida/boutique/pkg/database"
	"github.com/ritahmida/boutique/pkg/event"
	"github.com/ritahmida/boutique/pkg/grpc"
	"github.com/ritahmida/boutique/pkg/logger"
	"github.com/ritahmida/boutique/pkg/metrics"
	"github.com/ritahmida/boutique/pkg/middleware"
	"github.com/ritahmida/boutique/pkg/migration"
	"github.com/ritahmida/boutique/pkg/notification"
	"github.com/ritahmida/boutique/pkg/queue"
	"github.com/ritahmida/boutique/pkg/reqid"
	"github.com/ritahmida/boutique/pkg/router"
	"github.com/ritahmida/boutique/pkg/schedule"
	"github.com/ritahmida/boutique/pkg/session"
	"github.com/ritahmida/boutique/pkg/storage"
	"github.com/ritahmida/boutique/pkg/ws"
)

const lowStockThreshold = 3

// Start boots every subsystem and serves HTTP until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	mongoSink := setupLogSink()
	if mongoSink != nil {
		defer mongoSink.Close()
	}

	if err := database.Connect(); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("cache unavailable, running without it", "error", err)
	}
	storage.Connect()

	if err := migration.New(database.DB).Run(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background work: queue, events, scheduler.
	notification.SetSlackWebhook(config.Get("SLACK_WEBHOOK_URL", ""))
	jobs.Register()
	queue.UseDB(database.DB)
	if cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	queue.StartWorkers(ctx, 5)

	productService := services.NewProductService(database.DB)
	orderService := services.NewOrderService(database.DB)
	authService := services.NewAuthService(services.ConfigCredentials{})

	orderHub := ws.NewHub()
	go orderHub.Run()
	wireOrderFeed(orderHub)

	registerSchedule(productService)
	schedule.Start(ctx)

	// Optional gRPC health endpoint for load balancers.
	if port := config.GRPCPort(); port != "" {
		srv, _, err := grpc.Start(port)
		if err != nil {
			return err
		}
		defer grpc.Stop(srv)
	}

	handler := buildHandler(routes.Controllers{
		Auth:     controllers.NewAuthController(authService),
		Product:  controllers.NewProductController(productService),
		Order:    controllers.NewOrderController(orderService),
		Delivery: controllers.NewDeliveryController(),
	}, orderHub)

	addr := ":" + config.AppPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildHandler assembles the middleware stack and mounts the routes.
//
// Stack order (outermost → innermost):
//  1. Prometheus metrics — outermost for accurate total latency
//  2. Recovery          — catches panics before they kill the goroutine
//  3. Request ID        — inject unique ID before anything logs
//  4. Logger            — logs request_id from context
//  5. Session           — load/create session cookie via Redis
//  6. CORS              — set CORS headers
//  7. Rate limiter      — reject abusers early
func buildHandler(c routes.Controllers, orderHub *ws.Hub) http.Handler {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(session.DefaultOptions()))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(200, time.Minute))

	routes.RegisterAPI(r, c, orderHub)

	return r.Handler()
}

// Routes builds the full route table without starting anything.
// Used by the route:list command.
func Routes() map[string]string {
	r := router.New()
	routes.RegisterAPI(r, routes.Controllers{
		Auth:     controllers.NewAuthController(services.NewAuthService(services.ConfigCredentials{})),
		Product:  controllers.NewProductController(services.NewProductService(nil)),
		Order:    controllers.NewOrderController(services.NewOrderService(nil)),
		Delivery: controllers.NewDeliveryController(),
	}, ws.NewHub())
	return r.Routes()
}

// Seed runs the catalog seeders. Exposed for the seed command.
func Seed() error {
	return seeders.RunAll(database.DB)
}

// wireOrderFeed pushes every committed order onto the admin WebSocket feed.
func wireOrderFeed(hub *ws.Hub) {
	event.Listen(services.OrderCreated, func(payload interface{}) {
		order, ok := payload.(models.Order)
		if !ok {
			return
		}
		msg, err := json.Marshal(map[string]interface{}{
			"event": services.OrderCreated,
			"order": order,
		})
		if err != nil {
			logger.Error("ws feed: marshal order", "error", err)
			return
		}
		hub.Broadcast <- msg
	})
}

// registerSchedule sets up the recurring jobs. The low-stock digest is
// read-only: it reports variants running out but never mutates stock.
func registerSchedule(products *services.ProductService) {
	schedule.Cron("0 8 * * *").Name("low-stock-digest").WithoutOverlapping().Run(func() {
		variants, err := products.LowStock(lowStockThreshold)
		if err != nil {
			logger.Error("low-stock digest failed", "error", err)
			return
		}
		if len(variants) == 0 {
			logger.Info("low-stock digest: all variants above threshold")
			return
		}

		collection.SortBy(variants, func(a, b models.Variant) bool {
			if a.ProductID != b.ProductID {
				return a.ProductID < b.ProductID
			}
			return a.Quantity < b.Quantity
		})

		logger.Warn("low-stock digest", "count", len(variants))
		notification.SendAsync(config.Get("ADMIN_EMAIL", ""), &lowStockNotification{variants: variants})
	})
}

// lowStockNotification is the daily digest sent to the shop owner.
type lowStockNotification struct {
	variants []models.Variant
}

func (n *lowStockNotification) Via() []string {
	channels := []string{"mail"}
	if config.Get("SLACK_WEBHOOK_URL", "") != "" {
		channels = append(channels, "slack")
	}
	return channels
}

func (n *lowStockNotification) ToSlack() notification.SlackData {
	var lines []string
	for _, v := range n.variants {
		lines = append(lines, fmt.Sprintf("product %d %s/%s: %d left", v.ProductID, v.Size, v.Color, v.Quantity))
	}
	return notification.SlackData{
		Text: fmt.Sprintf("Low stock: %d variants need attention", len(n.variants)),
		Attachments: []notification.SlackAttachment{{
			Color: "warning",
			Title: "Variants at or below threshold",
			Text:  strings.Join(lines, "\n"),
		}},
	}
}

func (n *lowStockNotification) ToMail() notification.MailData {
	body := "<p>Variants at or below the restock threshold:</p><ul>"
	for _, v := range n.variants {
		body += fmt.Sprintf("<li>product %d — %s/%s: %d left</li>", v.ProductID, v.Size, v.Color, v.Quantity)
	}
	body += "</ul>"
	return notification.MailData{
		Subject: fmt.Sprintf("Low stock: %d variants need attention", len(n.variants)),
		Body:    body,
	}
}

// setupLogSink fans the slog output out to MongoDB when configured.
func setupLogSink() *logger.MongoHandler {
	uri := config.MongoLogURI()
	if uri == "" {
		return nil
	}

	mh, err := logger.NewMongoHandler(uri, config.MongoLogDatabase(), "logs")
	if err != nil {
		logger.Warn("mongo log sink disabled", "error", err)
		return nil
	}

	logger.L = slog.New(logger.NewMultiHandler(logger.L.Handler(), mh))
	slog.SetDefault(logger.L)
	return mh
}
