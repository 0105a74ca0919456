package main

import (
	"context"
	"log"
	"os"

	"github.com/Baaaki/event-manager/internal/config"
	"github.com/Baaaki/event-manager/internal/database"
	"github.com/Baaaki/event-manager/internal/models"
	"github.com/Baaaki/event-manager/internal/repository"
	"github.com/Baaaki/event-manager/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)

	existing, err := userRepo.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatal("Failed to look up admin:", err)
	}
	if existing != nil {
		if existing.Role != models.RoleAdmin {
			if _, err := userRepo.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
				log.Fatal("Failed to promote user to admin:", err)
			}
			log.Println("✅ Existing user promoted to admin:", existing.Username)
			return
		}
		log.Println("✅ Admin user already exists:", existing.Username)
		log.Println("   Email:", existing.Email)
		return
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := &models.User{
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}

	if err := userRepo.CreateUser(ctx, admin); err != nil {
		log.Fatal("Failed to create admin:", err)
	}

	log.Println("✅ Admin user created successfully!")
	log.Println("   Username:", admin.Username)
	log.Println("   Email:", admin.Email)
}
