package models

import (
	"time"

	"gorm.io/gorm"
)

// VehicleOwner is the registered keeper of a plate. Owners are managed
// independently of violations; the challan workflow never mutates them.
type VehicleOwner struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Numberplate string    `gorm:"size:20;uniqueIndex;not null" json:"numberplate"`
	OwnerName   string    `gorm:"size:100;not null" json:"owner_name"`
	Email       string    `gorm:"size:100" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Address     string    `gorm:"type:text" json:"address"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type OwnerRepo struct {
	db *gorm.DB
}

func NewOwnerRepo(db *gorm.DB) *OwnerRepo {
	return &OwnerRepo{db: db}
}

// FindByPlate returns the owner of a plate or gorm.ErrRecordNotFound.
// Intake treats absence as a normal outcome, not a failure.
func (r *OwnerRepo) FindByPlate(numberplate string) (*VehicleOwner, error) {
	var o VehicleOwner
	if err := r.db.Where("numberplate = ?", numberplate).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OwnerRepo) Create(o *VehicleOwner) error {
	return r.db.Create(o).Error
}

func (r *OwnerRepo) Update(o *VehicleOwner) error {
	return r.db.Save(o).Error
}

func (r *OwnerRepo) List(page, limit int) ([]VehicleOwner, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	var total int64
	if err := r.db.Model(&VehicleOwner{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var owners []VehicleOwner
	err := r.db.Order("numberplate").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&owners).Error
	return owners, total, err
}
