package model

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Subscription records an owner's paid plan. There is at most one row per
// owner; renewals and upgrades overwrite the existing row, which is what
// keeps payment webhook redelivery idempotent.
type Subscription struct {
	gorm.Model
	OwnerID   uint   `json:"owner_id" gorm:"index;not null"`
	OwnerName string `json:"owner_name"`

	PlanKey  string             `json:"plan_key" gorm:"not null"`
	PlanName string             `json:"plan_name" gorm:"not null"`
	Status   SubscriptionStatus `json:"status" gorm:"default:'active'"`

	StartDate  time.Time `json:"start_date"`
	ExpiryDate time.Time `json:"expiry_date"`

	LastPaymentReference string `json:"last_payment_reference"`

	Owner Owner `json:"-" gorm:"foreignKey:OwnerID"`
}
