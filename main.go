package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-api/models"
	"github.com/marketbay/storefront-api/routes"
	"github.com/marketbay/storefront-api/store"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()

	// Init DB
	db := initDatabase()
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.CartLine{},
		&models.ContactMessage{},
		&models.RefreshToken{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// Stores: acquired once here, passed down explicitly
	stores := routes.Stores{
		Users:    store.NewUserStore(db),
		Carts:    store.NewCartStore(db),
		Contacts: store.NewContactStore(db),
		Tokens:   store.NewRefreshTokenStore(db),
	}

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, stores)

	// Drop expired refresh tokens hourly
	go startRefreshTokenPurge(stores.Tokens, time.Hour)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("❌ DB handle unavailable: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db
}

// startRefreshTokenPurge deletes expired refresh tokens on a fixed interval
func startRefreshTokenPurge(tokens *store.RefreshTokenStore, interval time.Duration) {
	for {
		time.Sleep(interval)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		purged, err := tokens.PurgeExpired(ctx)
		cancel()

		if err != nil {
			log.Printf("❌ Failed to purge refresh tokens: %v", err)
		} else if purged > 0 {
			log.Printf("🗑️ Removed %d expired refresh tokens", purged)
		}
	}
}
