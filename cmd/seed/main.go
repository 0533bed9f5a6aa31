package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mkessler/timetrack/internal/config"
	"github.com/mkessler/timetrack/internal/database"
	"github.com/mkessler/timetrack/internal/models"
)

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	if err := seedAdmin(db, adminPassword); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "1" {
		if err := seedDemoData(db); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Println("Demo data seeded")
	}

	log.Println("Seed completed successfully!")
}

// seedAdmin ensures an enabled admin account exists. Re-running the
// script leaves an existing account untouched.
func seedAdmin(db *gorm.DB, password string) error {
	var existing models.User
	err := db.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		log.Println("Admin account already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("error checking admin account: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	admin := models.User{
		Username:         "admin",
		Name:             "Administrator",
		Email:            "admin@example.com",
		PasswordHash:     string(hashed),
		Enabled:          true,
		RegistrationDate: time.Now(),
		RoleID:           models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("error creating admin account: %w", err)
	}

	log.Println("Admin account created (username: admin)")
	return nil
}

// seedDemoData inserts a small data set to click through: one team, one
// customer with a project, a global and a project activity, and a tag.
func seedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Customer{}).Count(&count).Error; err != nil {
		return fmt.Errorf("error checking demo data: %w", err)
	}
	if count > 0 {
		log.Println("Demo data already present, skipping")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		team := models.Team{Name: "Demo engineering team", Color: "#2f7ed8"}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		customer := models.Customer{Name: "Acme Corporation", Color: "#8bbc21", Number: "C-1001", Visible: true}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		project := models.Project{
			CustomerID:       customer.ID,
			Name:             "Website relaunch",
			Color:            "#910000",
			Number:           "P-2001",
			GlobalActivities: true,
			Visible:          true,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		global := models.Activity{Name: "Internal meeting", Visible: true}
		if err := tx.Create(&global).Error; err != nil {
			return err
		}

		bound := models.Activity{Name: "Frontend development", ProjectID: &project.ID, Visible: true}
		if err := tx.Create(&bound).Error; err != nil {
			return err
		}

		tag := models.Tag{Name: "Billable work", Color: "#1aadce", Visible: true}
		return tx.Create(&tag).Error
	})
}
