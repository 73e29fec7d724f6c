package main

import (
	"context"
	"log"
	"time"

	"gym_manager/internal/config"
	"gym_manager/internal/database"
	"gym_manager/internal/handlers"
	"gym_manager/internal/migrations"
	"gym_manager/internal/redis"
	"gym_manager/internal/repository"
	"gym_manager/internal/services"
	"gym_manager/pkg/sms"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.GinMode != gin.ReleaseMode)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.SeedDefaults(context.Background(), db, cfg.DefaultAdminPassword); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Initialize SMS gateway
	var gateway services.NotificationGateway = sms.DisabledGateway{}
	if cfg.SMSEnabled {
		client := sms.NewClient(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSenderID)
		client.CountryCode = cfg.SMSCountryCode
		gateway = client
	} else {
		log.Println("SMS delivery disabled; attempts will be logged as failed")
	}

	// Initialize services
	store := repository.NewStore(db)
	userService := services.NewUserService(store.Users)
	notificationService := services.NewNotificationService(store, gateway, redisClient, services.NotificationConfig{
		WelcomeEnabled:   cfg.WelcomeSMSEnabled,
		WelcomeTemplate:  cfg.WelcomeSMSTemplate,
		ExpiryEnabled:    cfg.ExpirySMSEnabled,
		ExpiryTemplate:   cfg.ExpirySMSTemplate,
		RatePerSecond:    cfg.SMSRatePerSecond,
		BroadcastTimeout: cfg.BroadcastTimeout,
	})
	membershipService := services.NewMembershipService(store, notificationService, redisClient, cfg.MemberCodePrefix)
	planService := services.NewPlanService(store, redisClient, cfg.PlanCacheTTL)
	paymentService := services.NewPaymentService(store)
	productService := services.NewCafeProductService(store)
	orderService := services.NewCafeOrderService(store)

	// Expiry notifications
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.ExpiryCheckInterval > 0 {
		go runExpiryTicker(ctx, membershipService, cfg.ExpiryCheckInterval)
	}

	// Setup routes
	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.CorsAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Users:          userService,
		Members:        handlers.NewMemberHandler(membershipService, paymentService),
		Plans:          handlers.NewPlanHandler(planService),
		Payments:       handlers.NewPaymentHandler(paymentService),
		Cafe:           handlers.NewCafeHandler(productService, orderService),
		Notifications:  handlers.NewNotificationHandler(notificationService, membershipService),
		Accounts:       handlers.NewUserHandler(userService),
	})

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func runExpiryTicker(ctx context.Context, membershipService services.MembershipService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Expiry check scheduled every %s", interval)
	for {
		if _, err := membershipService.ComputeExpiryNotifications(ctx, time.Now()); err != nil {
			log.Printf("Expiry check failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
