package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/challan/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20240110_create_challan_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Violation{}, &models.VehicleOwner{},
					&models.AdminUser{}, &models.ActivityLog{})
			},
		},
		{
			ID: "20240218_index_violation_date",
			Migrate: func(tx *gorm.DB) error {
				// Recent-violations listing and per-plate history both sort on this.
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_violations_violation_date ON violations (violation_date DESC)").Error
			},
		},
	})
	return m.Migrate()
}
