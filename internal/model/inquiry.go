package model

import (
	"time"

	"gorm.io/gorm"
)

type InquiryStatus string

const (
	InquiryStatusNew        InquiryStatus = "new"
	InquiryStatusRead       InquiryStatus = "read"
	InquiryStatusContacted  InquiryStatus = "contacted"
	InquiryStatusNoResponse InquiryStatus = "no_response"
	InquiryStatusCompleted  InquiryStatus = "completed"
)

// Inquiry is a customer's message to a ride owner about a listing.
type Inquiry struct {
	gorm.Model
	ListingID   uint       `json:"listing_id" gorm:"index"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Message     string     `json:"message" gorm:"type:text"`
	Status      string     `json:"status" gorm:"default:'new'"`
	ReadStatus  bool       `json:"read_status" gorm:"default:false"`
	ContactedAt *time.Time `json:"contacted_at"`

	Listing Listing `json:"listing" gorm:"foreignKey:ListingID"`
}
