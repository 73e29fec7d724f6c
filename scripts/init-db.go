package main

import (
	"context"
	"fmt"
	"log"

	"gym_manager/internal/config"
	"gym_manager/internal/database"
	"gym_manager/internal/migrations"
	"gym_manager/internal/repository"
	"gym_manager/internal/services"
)

func main() {
	fmt.Println("Initializing database...")

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.Initialize(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(ctx, db, true, cfg.DefaultAdminPassword); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Prove the seeded credentials work before handing the database over.
	userService := services.NewUserService(repository.NewStore(db).Users)
	admin, err := userService.Authenticate(ctx, "admin", cfg.DefaultAdminPassword)
	if err != nil {
		log.Fatal("Seeded admin cannot authenticate:", err)
	}

	fmt.Println("Database initialization completed successfully!")
	fmt.Printf("Admin user id: %d (send it as the X-Admin-ID header)\n", admin.ID)
}
