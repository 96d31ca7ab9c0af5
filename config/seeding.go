package config

import (
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/challan/models"
)

// Seed inserts the default admin account and, when enabled, a handful of
// sample vehicle owners for local development.
func Seed(db *gorm.DB, cfg *Config) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if cfg.SeedSampleData {
		seedSampleOwners(db)
	}
	return nil
}

// seedAdmin creates the default admin user if none exists yet. The
// credentials are env-overridable so deployments never ship the default.
func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Warn("ADMIN_PASSWORD not set, seeding default admin credentials")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         "System Administrator",
		Email:        os.Getenv("ADMIN_EMAIL"),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Infof("Seeded default admin user %q", username)
	return nil
}

func seedSampleOwners(db *gorm.DB) {
	owners := []models.VehicleOwner{
		{Numberplate: "MH01AB1234", OwnerName: "Rahul Sharma", Email: "rahul.sharma@example.com", Phone: "9876543210", Address: "12 MG Road, Mumbai"},
		{Numberplate: "MH02CD5678", OwnerName: "Priya Patel", Email: "priya.patel@example.com", Phone: "9876501234", Address: "45 Link Road, Mumbai"},
		{Numberplate: "DL03EF9012", OwnerName: "Amit Verma", Email: "amit.verma@example.com", Phone: "9811122233", Address: "7 Ring Road, Delhi"},
	}
	for _, o := range owners {
		var existing models.VehicleOwner
		if err := db.Where("numberplate = ?", o.Numberplate).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&o).Error; err != nil {
			log.Warnf("Seeding sample owner %s failed: %v", o.Numberplate, err)
		}
	}
}
