package model

import "gorm.io/gorm"

type NotificationEvent string

const (
	EventNewSubscription NotificationEvent = "new_subscription"
	EventLimitWarning    NotificationEvent = "limit_warning"
	EventNewOwner        NotificationEvent = "new_owner"
	EventPaymentFailed   NotificationEvent = "payment_failed"
)

// AdminNotification is an append-only system message for the admin inbox.
// The only mutation after creation is flipping the read flag.
type AdminNotification struct {
	gorm.Model
	Message   string            `json:"message" gorm:"type:text;not null"`
	EventType NotificationEvent `json:"event_type" gorm:"index;not null"`
	Read      bool              `json:"read" gorm:"default:false"`
}
