package migrations

import (
	"context"
	"errors"
	"log"

	"gym_manager/internal/database"
	"gym_manager/internal/models"
	"gym_manager/internal/repository"
	"gym_manager/internal/services"

	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date and seeds default data. With
// reset set every table is dropped first, children before parents.
func RunMigrations(ctx context.Context, db *gorm.DB, reset bool, adminPassword string) error {
	log.Println("Running database migrations...")

	if reset {
		log.Println("Dropping existing tables...")
		tables := models.All()
		for i := len(tables) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(tables[i]); err != nil {
				log.Printf("Warning: Error dropping table %T: %v", tables[i], err)
			}
		}
	}

	log.Println("Creating tables...")
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if err := SeedDefaults(ctx, db, adminPassword); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// SeedDefaults creates the super admin, starter plans and cafe products. It
// does nothing once the admin user exists.
func SeedDefaults(ctx context.Context, db *gorm.DB, adminPassword string) error {
	store := repository.NewStore(db)
	userService := services.NewUserService(store.Users)

	_, err := userService.GetUserByUsername(ctx, "admin")
	if err == nil {
		log.Println("Super admin user already exists")
		return nil
	}
	var notFound *services.NotFoundError
	if !errors.As(err, &notFound) {
		return err
	}

	log.Println("Creating default data...")
	superAdmin := &models.User{
		Username: "admin",
		Email:    "admin@gym.local",
		Role:     string(models.SuperAdmin),
		IsActive: true,
	}
	if err := userService.CreateUser(ctx, superAdmin, adminPassword); err != nil {
		return err
	}
	log.Printf("Super admin user created (id=%d, username=admin)", superAdmin.ID)

	planService := services.NewPlanService(store, nil, 0)
	for _, plan := range defaultPlans {
		if _, err := planService.CreatePlan(ctx, plan); err != nil {
			return err
		}
	}

	productService := services.NewCafeProductService(store)
	for _, product := range defaultProducts {
		if _, err := productService.CreateProduct(ctx, product); err != nil {
			return err
		}
	}

	log.Println("Default data created successfully!")
	return nil
}

var defaultPlans = []services.PlanInput{
	{
		Name:         "Basic",
		DurationDays: 30,
		Price:        29.99,
		Description:  "Gym floor access during staffed hours",
		Features:     []string{"Gym floor access", "Locker room"},
	},
	{
		Name:         "Premium",
		DurationDays: 30,
		Price:        49.99,
		Description:  "Unlimited access with group classes",
		Features:     []string{"24/7 access", "Group classes", "Locker room", "Sauna"},
	},
	{
		Name:         "Annual",
		DurationDays: 365,
		Price:        499.00,
		Description:  "Twelve months of Premium at a discount",
		Features:     []string{"24/7 access", "Group classes", "Locker room", "Sauna", "Two guest passes"},
	},
}

var defaultProducts = []services.ProductInput{
	{Name: "Protein Shake", Category: "beverage", Price: 5.50, CostPrice: 2.00, StockQuantity: 40},
	{Name: "Bottled Water", Category: "beverage", Price: 1.50, CostPrice: 0.40, StockQuantity: 100},
	{Name: "Protein Bar", Category: "food", Price: 3.00, CostPrice: 1.20, StockQuantity: 60},
	{Name: "Creatine 300g", Category: "supplement", Price: 24.99, CostPrice: 14.00, StockQuantity: 10},
}
