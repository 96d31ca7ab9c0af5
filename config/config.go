package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port         string
	DBDSN        string
	JWTSecret    string
	CameraAPIKey string

	UPIID        string
	UPIPayeeName string

	MailAPIURL string
	MailAPIKey string

	SiteURL   string
	UploadDir string

	// Optional path to a GeoJSON file describing enforcement zones.
	ZonesFile string

	SeedSampleData bool
}

// Load reads the .env file (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBDSN:          os.Getenv("DB_DSN"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CameraAPIKey:   os.Getenv("CAMERA_API_KEY"),
		UPIID:          getEnv("UPI_ID", "traffic-police@upi"),
		UPIPayeeName:   getEnv("UPI_PAYEE_NAME", "Traffic Challan Payment"),
		MailAPIURL:     os.Getenv("MAIL_API_URL"),
		MailAPIKey:     os.Getenv("MAIL_API_KEY"),
		SiteURL:        getEnv("SITE_URL", "http://localhost:8080"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		ZonesFile:      os.Getenv("ENFORCEMENT_ZONES"),
		SeedSampleData: os.Getenv("SEED_SAMPLE_DATA") == "true",
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Connect opens the postgres connection used by the whole application.
// The handle is returned to the caller instead of being stored in a
// package global so repositories can be constructed explicitly.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
