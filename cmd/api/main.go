package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/aurawell/aurawell-api/internal/config"
	"github.com/aurawell/aurawell-api/internal/handler"
	"github.com/aurawell/aurawell-api/internal/middleware"
	"github.com/aurawell/aurawell-api/internal/service"
	"github.com/aurawell/aurawell-api/internal/store"
	"github.com/aurawell/aurawell-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	st, err := store.Open(cfg.Data.Dir, log)
	if err != nil {
		log.Error("open store", "error", err)
		os.Exit(1)
	}

	// Redis (optional product cache + notifier idempotency)
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("connected to Redis")
	}

	// RabbitMQ (optional order events)
	var amqpConn *amqp.Connection
	var amqpCh *amqp.Channel
	if cfg.RabbitMQ.URL != "" {
		amqpConn, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Error("connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpConn.Close()

		amqpCh, err = amqpConn.Channel()
		if err != nil {
			log.Error("open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer amqpCh.Close()

		if err := worker.SetupRabbitMQ(amqpCh); err != nil {
			log.Error("setup RabbitMQ", "error", err)
			os.Exit(1)
		}
		log.Info("connected to RabbitMQ")
	}

	// Services
	authSvc := service.NewAuthService(st, cfg.JWT.Secret, cfg.JWT.Expiration)
	productSvc := service.NewProductService(st, redisClient)
	cartSvc := service.NewCartService(st)
	orderSvc := service.NewOrderService(st, amqpCh)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(productSvc)
	cartH := handler.NewCartHandler(cartSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	healthH := handler.NewHealthHandler(cfg.Data.Dir, redisClient, amqpConn)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.GET("/me", middleware.AuthRequired(cfg.JWT.Secret), authH.Me)

		products := v1.Group("/products")
		products.GET("", productH.List)
		products.GET("/:id", productH.GetByID)

		adminProducts := products.Group("", middleware.AuthRequired(cfg.JWT.Secret), middleware.AdminOnly())
		adminProducts.POST("", productH.Create)
		adminProducts.PUT("/:id", productH.Update)
		adminProducts.DELETE("/:id", productH.Delete)

		cart := v1.Group("/cart", middleware.AuthRequired(cfg.JWT.Secret))
		cart.GET("", cartH.GetCart)
		cart.DELETE("", cartH.Clear)
		cart.POST("/items", cartH.AddItem)
		cart.PUT("/items/:productId", cartH.UpdateItem)
		cart.DELETE("/items/:productId", cartH.RemoveItem)

		orders := v1.Group("/orders", middleware.AuthRequired(cfg.JWT.Secret))
		orders.POST("", orderH.PlaceOrder)
		orders.GET("", orderH.ListOrders)
		orders.GET("/:id", orderH.GetOrder)

		admin := v1.Group("/admin", middleware.AuthRequired(cfg.JWT.Secret), middleware.AdminOnly())
		admin.GET("/orders", orderH.ListAllOrders)
		admin.PUT("/orders/:id/status", orderH.UpdateStatus)
	}

	// Notifier
	var notifier *worker.OrderNotifier
	if amqpCh != nil {
		notifier = worker.NewOrderNotifier(amqpCh, st, redisClient, log)
		if err := notifier.Start(ctx); err != nil {
			log.Error("start order notifier", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	if notifier != nil {
		notifier.Stop()
		time.Sleep(500 * time.Millisecond)
	}
	cancel()
	log.Info("server stopped")
}
