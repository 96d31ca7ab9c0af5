package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Challan status values. A challan is created unpaid and the only
// transition the system performs is {unpaid, pending} -> paid.
const (
	StatusUnpaid  = "unpaid"
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Violation is a single challan row. The monetary amount is fixed at
// creation; status, transaction_id and payment_date change together in
// one conditional update when the payment is confirmed.
type Violation struct {
	ID            uint           `gorm:"primaryKey" json:"-"`
	ChallanID     string         `gorm:"size:50;uniqueIndex;not null" json:"challan_id"`
	Numberplate   string         `gorm:"size:20;index;not null" json:"numberplate"`
	ViolationDate time.Time      `gorm:"not null" json:"violation_date"`
	Location      string         `gorm:"size:255;not null" json:"location"`
	ViolationType string         `gorm:"size:100;not null" json:"violation_type"`
	Amount        float64        `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        string         `gorm:"size:20;not null;default:unpaid" json:"status"`
	ImagePath     *string        `gorm:"size:255" json:"image_path,omitempty"`
	TransactionID *string        `gorm:"size:100" json:"transaction_id,omitempty"`
	PaymentDate   *time.Time     `json:"payment_date,omitempty"`
	Latitude      *float64       `json:"latitude,omitempty"`
	Longitude     *float64       `json:"longitude,omitempty"`
	Metadata      datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ChallanDetails is a violation joined with its owner. Owner columns are
// pointers: a violation whose plate has no registered owner is still a
// valid record on every read path.
type ChallanDetails struct {
	ChallanID     string         `json:"challan_id"`
	Numberplate   string         `json:"numberplate"`
	ViolationDate time.Time      `json:"violation_date"`
	Location      string         `json:"location"`
	ViolationType string         `json:"violation_type"`
	Amount        float64        `json:"amount"`
	Status        string         `json:"status"`
	ImagePath     *string        `json:"image_path,omitempty"`
	TransactionID *string        `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time     `json:"payment_date,omitempty"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
	OwnerName     *string        `json:"owner_name"`
	OwnerEmail    *string        `json:"owner_email"`
	OwnerPhone    *string        `json:"owner_phone"`
}

// DashboardStats are the admin dashboard aggregates. Outstanding is the
// logical complement of paid (unpaid plus pending), so Paid + Outstanding
// always equals Total for any snapshot.
type DashboardStats struct {
	Total       int64   `json:"total_challans"`
	Paid        int64   `json:"paid_challans"`
	Outstanding int64   `json:"outstanding_challans"`
	Revenue     float64 `json:"total_revenue"`
}

// ViolationFilter narrows the admin listing.
type ViolationFilter struct {
	Status      string
	Numberplate string
	Page        int
	Limit       int
}

type ViolationRepo struct {
	db *gorm.DB
}

func NewViolationRepo(db *gorm.DB) *ViolationRepo {
	return &ViolationRepo{db: db}
}

func (r *ViolationRepo) Create(v *Violation) error {
	return r.db.Create(v).Error
}

// IsDuplicateKey reports whether err came from a unique index, so intake
// can regenerate the challan identifier and retry.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

const ownerJoin = "LEFT JOIN vehicle_owners o ON v.numberplate = o.numberplate"

const detailColumns = "v.challan_id, v.numberplate, v.violation_date, v.location, " +
	"v.violation_type, v.amount, v.status, v.image_path, v.transaction_id, " +
	"v.payment_date, v.metadata, o.owner_name, o.email AS owner_email, o.phone AS owner_phone"

// FindByChallanID returns the challan joined with its owner, or
// gorm.ErrRecordNotFound.
func (r *ViolationRepo) FindByChallanID(challanID string) (*ChallanDetails, error) {
	var d ChallanDetails
	err := r.db.Table("violations v").
		Select(detailColumns).
		Joins(ownerJoin).
		Where("v.challan_id = ?", challanID).
		Take(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByPlate returns every challan for a plate, newest first. No match is
// an empty slice, not an error.
func (r *ViolationRepo) FindByPlate(numberplate string) ([]ChallanDetails, error) {
	var out []ChallanDetails
	err := r.db.Table("violations v").
		Select(detailColumns).
		Joins(ownerJoin).
		Where("v.numberplate = ?", numberplate).
		Order("v.violation_date DESC").
		Find(&out).Error
	return out, err
}

// MarkPaid performs the payment transition as a single conditional update:
// status, transaction_id and payment_date are written together, and the
// WHERE clause excludes rows that are already paid. The affected-row count
// decides between success and conflict, which also serializes two
// concurrent confirmations for the same challan.
func (r *ViolationRepo) MarkPaid(challanID, transactionID string, paidAt time.Time) (bool, error) {
	res := r.db.Model(&Violation{}).
		Where("challan_id = ? AND status <> ?", challanID, StatusPaid).
		Updates(map[string]interface{}{
			"status":         StatusPaid,
			"transaction_id": transactionID,
			"payment_date":   paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Exists reports whether a challan row exists at all, regardless of status.
func (r *ViolationRepo) Exists(challanID string) (bool, error) {
	var count int64
	err := r.db.Model(&Violation{}).Where("challan_id = ?", challanID).Count(&count).Error
	return count > 0, err
}

// Stats computes the dashboard aggregates.
func (r *ViolationRepo) Stats() (*DashboardStats, error) {
	var s DashboardStats
	if err := r.db.Model(&Violation{}).Count(&s.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&Violation{}).Where("status = ?", StatusPaid).Count(&s.Paid).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&Violation{}).Where("status <> ?", StatusPaid).Count(&s.Outstanding).Error; err != nil {
		return nil, err
	}
	err := r.db.Model(&Violation{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", StatusPaid).
		Scan(&s.Revenue).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Recent returns the latest violations by violation date, owner left-joined.
func (r *ViolationRepo) Recent(limit int) ([]ChallanDetails, error) {
	var out []ChallanDetails
	err := r.db.Table("violations v").
		Select(detailColumns).
		Joins(ownerJoin).
		Order("v.violation_date DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// List returns a page of violations for the admin listing.
func (r *ViolationRepo) List(f ViolationFilter) ([]ChallanDetails, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	base := r.db.Table("violations v").Joins(ownerJoin)
	if f.Status != "" {
		base = base.Where("v.status = ?", f.Status)
	}
	if f.Numberplate != "" {
		base = base.Where("v.numberplate = ?", f.Numberplate)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []ChallanDetails
	err := base.Session(&gorm.Session{}).
		Select(detailColumns).
		Order("v.violation_date DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&out).Error
	return out, total, err
}
