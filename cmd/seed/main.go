package main

import (
	"context"
	"log"
	"time"

	"smart-grocery-be/internal/config"
	"smart-grocery-be/internal/model"
	"smart-grocery-be/internal/repository/unitofwork"
	"smart-grocery-be/internal/seed"
	"smart-grocery-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatalf("Error: Failed to create pgcrypto extension: %v", err)
	}

	log.Println("Step 2: Migrating schema...")
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	log.Println("Step 3: Seeding catalog...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer uow.Rollback()

	products := seed.Products()
	recipes := seed.Recipes()
	promotions := seed.Promotions(time.Now())
	if err := uow.ProductRepository().Upsert(ctx, products); err != nil {
		log.Fatalf("Error: Failed to seed products: %v", err)
	}
	if err := uow.RecipeRepository().Upsert(ctx, recipes); err != nil {
		log.Fatalf("Error: Failed to seed recipes: %v", err)
	}
	if err := uow.PromotionRepository().Upsert(ctx, promotions); err != nil {
		log.Fatalf("Error: Failed to seed promotions: %v", err)
	}
	if err := uow.Commit(); err != nil {
		log.Fatalf("Error: Commit failed: %v", err)
	}

	log.Printf("✅ Seeded %d products, %d recipes, %d promotions", len(products), len(recipes), len(promotions))
}
