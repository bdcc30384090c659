package model

import "time"

// FleetSubscriber is a customer who asked to hear about new vehicles from
// a particular owner's fleet.
type FleetSubscriber struct {
	ID           uint      `gorm:"primaryKey"`
	OwnerID      uint      `gorm:"not null"`
	Name         string    `gorm:"size:255"`
	Email        string    `gorm:"not null"`
	Source       string    `gorm:"size:50"`
	SubscribedAt time.Time `gorm:"autoCreateTime"`
}

func (FleetSubscriber) TableName() string {
	return "fleet_subscribers"
}
