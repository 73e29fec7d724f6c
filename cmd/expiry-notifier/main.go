// Command expiry-notifier runs one expiry notification pass and exits, for
// use from cron when the server's own ticker is disabled.
package main

import (
	"context"
	"log"
	"time"

	"gym_manager/internal/config"
	"gym_manager/internal/database"
	"gym_manager/internal/redis"
	"gym_manager/internal/repository"
	"gym_manager/internal/services"
	"gym_manager/pkg/sms"
)

func main() {
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// The lock is what keeps this from overlapping with a server ticker, so
	// Redis is required here.
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	var gateway services.NotificationGateway = sms.DisabledGateway{}
	if cfg.SMSEnabled {
		client := sms.NewClient(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSenderID)
		client.CountryCode = cfg.SMSCountryCode
		gateway = client
	}

	store := repository.NewStore(db)
	notificationService := services.NewNotificationService(store, gateway, redisClient, services.NotificationConfig{
		ExpiryEnabled:  cfg.ExpirySMSEnabled,
		ExpiryTemplate: cfg.ExpirySMSTemplate,
		RatePerSecond:  cfg.SMSRatePerSecond,
	})
	membershipService := services.NewMembershipService(store, notificationService, redisClient, cfg.MemberCodePrefix)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	result, err := membershipService.ComputeExpiryNotifications(ctx, time.Now())
	if err != nil {
		log.Fatal("Expiry check failed:", err)
	}
	if result.Locked {
		log.Println("Another expiry check is running; nothing to do")
		return
	}
	log.Printf("Expiry check done: %d expired, %d expiring, %d skipped, %d failed",
		result.Expired, result.Expiring, result.Skipped, result.Failed)
}
