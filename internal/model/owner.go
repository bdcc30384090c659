package model

import "gorm.io/gorm"

type OwnerStatus string

const (
	OwnerStatusPendingApproval OwnerStatus = "pending_approval"
	OwnerStatusActive          OwnerStatus = "active"
	OwnerStatusSuspended       OwnerStatus = "suspended"
)

// Owner is the business profile behind a ride-owner account. The listing
// count is never stored on the row; it is derived from the listings table.
type Owner struct {
	gorm.Model
	UserID       uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	BusinessName string `json:"business_name" gorm:"not null"`
	BusinessType string `json:"business_type"`

	CurrentPlan string      `json:"current_plan" gorm:"default:'none'"`
	Status      OwnerStatus `json:"status" gorm:"default:'pending_approval'"`

	LogoURL        string `json:"logo_url"`
	WhatsAppNumber string `json:"whats_app_number"`
	About          string `json:"about" gorm:"type:text"`

	User     User      `json:"-" gorm:"foreignKey:UserID"`
	Listings []Listing `json:"-" gorm:"foreignKey:OwnerID"`
}

// CountListings returns the number of live listings the owner has. Soft
// deleted rows are excluded by gorm's default scope.
func (o *Owner) CountListings(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Listing{}).Where("owner_id = ?", o.ID).Count(&count).Error
	return count, err
}
