package models

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Activity log action kinds.
const (
	ActionViolationCreated = "violation_created"
	ActionPayment          = "payment"
	ActionLogin            = "login"
	ActionExport           = "export"
)

// ActivityLog is an append-only diagnostic trail. Rows are written by the
// workflows and only ever read back by the admin activity endpoint.
type ActivityLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	UserID    *string   `gorm:"size:100" json:"user_id,omitempty"`
	IPAddress string    `gorm:"size:45;not null" json:"ip_address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

type ActivityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Record appends an entry. Failures are logged and swallowed: the trail is
// diagnostic and must never fail the operation being recorded.
func (r *ActivityRepo) Record(action, details string, userID *string, ip string) {
	entry := ActivityLog{
		Action:    action,
		Details:   details,
		UserID:    userID,
		IPAddress: ip,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		log.WithError(err).Warnf("Failed to record %s activity", action)
	}
}

func (r *ActivityRepo) Recent(limit int) ([]ActivityLog, error) {
	if limit < 1 {
		limit = 50
	}
	var entries []ActivityLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
