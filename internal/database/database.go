package database

import (
	"fmt"
	"log"

	"github.com/mkessler/timetrack/internal/config"
	"github.com/mkessler/timetrack/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")
	return nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func Migrate() error {
	log.Println("Running database migrations...")
	err := DB.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Customer{},
		&models.CustomerTeam{},
		&models.Project{},
		&models.ProjectTeam{},
		&models.ProjectActivity{},
		&models.Activity{},
		&models.ActivityTeam{},
		&models.Tag{},
		&models.Timesheet{},
		&models.TimesheetTag{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedRoles(DB); err != nil {
		return err
	}

	log.Println("Database migrations completed")
	return nil
}

// seedRoles inserts the fixed role reference set, skipping rows that
// already exist.
func seedRoles(db *gorm.DB) error {
	for _, role := range models.SeedRoles {
		var count int64
		if err := db.Model(&models.Role{}).Where("id = ?", role.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check role %d: %w", role.ID, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %d: %w", role.ID, err)
		}
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
