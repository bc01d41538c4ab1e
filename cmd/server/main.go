package main

import (
	"context"
	"log"
	"net/http"

	"retail-pos/internal/activity"
	webAdapter "retail-pos/internal/adapters/web"
	"retail-pos/internal/app"
	"retail-pos/internal/cache"
	"retail-pos/internal/config"
	"retail-pos/internal/core"
	"retail-pos/internal/db"
	"retail-pos/internal/events"
	"retail-pos/internal/gateway"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	var reportCache core.ReportCache
	if cfg.RedisAddr != "" {
		c := cache.New(cfg.RedisAddr)
		if err := c.Ping(ctx); err != nil {
			log.Printf("Warning: redis unreachable, reports will not be cached: %v", err)
		}
		defer c.Close()
		reportCache = c
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, "retail-pos", 256)
		defer producer.Close()
	}

	var gw core.PaymentGateway
	if cfg.GatewayBaseURL != "" {
		gw = gateway.New(cfg.GatewayBaseURL, cfg.MerchantID, cfg.GatewayToken, cfg.GatewayTimeout)
	} else {
		log.Println("Warning: GATEWAY_BASE_URL is not set, QR checkout is disabled")
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	saleService := core.NewSaleService(pool)
	paymentService := core.NewPaymentService(pool)
	inventoryService := core.NewInventoryService(pool)
	userService := core.NewUserService(pool)
	reportingService := core.NewReportingService(pool, reportCache)
	recorder := activity.NewRecorder(pool, producer)

	svc := app.NewAppService(saleService, paymentService, inventoryService, userService, reportingService, gw, recorder)

	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, cfg.JWTSecret)

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
