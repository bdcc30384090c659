package model

import (
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vehicle Types
type VehicleType string

const (
	VehicleTypeSedan     VehicleType = "Sedan"
	VehicleTypeSUV       VehicleType = "SUV"
	VehicleTypeVan       VehicleType = "Van"
	VehicleTypeMinibus   VehicleType = "Minibus"
	VehicleTypeBus       VehicleType = "Bus"
	VehicleTypeTruck     VehicleType = "Truck"
	VehicleTypeMotorbike VehicleType = "Motorbike"
	VehicleTypeTricycle  VehicleType = "Tricycle"
)

// Listing Status
type ListingStatus string

const (
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusApproved  ListingStatus = "approved"
	ListingStatusRejected  ListingStatus = "rejected"
	ListingStatusSuspended ListingStatus = "suspended"
)

// Currency Types
type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyGHS Currency = "GHS"
	CurrencyUSD Currency = "USD"
)

type Listing struct {
	gorm.Model
	Title       string        `json:"title" gorm:"not null"`
	Slug        string        `json:"slug" gorm:"uniqueIndex:idx_owner_listing_slug;not null"`
	Type        VehicleType   `json:"type" gorm:"not null"`
	Status      ListingStatus `json:"status" gorm:"default:'pending'"`
	PricePerDay float64       `json:"price_per_day" gorm:"not null"`
	Currency    Currency      `json:"currency" gorm:"not null"`
	Description string        `json:"description" gorm:"type:text"`

	OwnerID uint `json:"owner_id" gorm:"uniqueIndex:idx_owner_listing_slug;index"`

	// Location fields
	CountryCode   string `json:"country_code" gorm:"not null"`
	CountryName   string `json:"country_name" gorm:"not null"`
	StateCode     string `json:"state_code" gorm:"not null"`
	StateName     string `json:"state_name" gorm:"not null"`
	City          string `json:"city" gorm:"not null"`
	PickupAddress string `json:"pickup_address" gorm:"type:text"`

	// Vehicle fields
	Make            string `json:"make"`
	VehicleModel    string `json:"vehicle_model"`
	Year            int    `json:"year"`
	Seats           int    `json:"seats"`
	Mileage         int    `json:"mileage"`
	Transmission    string `json:"transmission"`
	FuelType        string `json:"fuel_type"`
	AirConditioning bool   `json:"air_conditioning"`
	WithDriver      bool   `json:"with_driver"`
	SelfDrive       bool   `json:"self_drive"`

	Owner    Owner            `json:"-" gorm:"foreignKey:OwnerID"`
	Images   []ListingImage   `json:"images" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Features []ListingFeature `json:"features" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

type ListingImage struct {
	gorm.Model
	ListingID uint   `json:"listing_id"`
	URL       string `json:"url" gorm:"not null"`
	IsCover   bool   `json:"is_cover" gorm:"default:false"`
	Order     int    `json:"order" gorm:"default:0"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID"`
}

// ListingFeature holds free-form extras such as "Bluetooth" or
// "Roof rack"; Values may be a string or an array.
type ListingFeature struct {
	gorm.Model
	ListingID uint           `json:"listing_id" gorm:"index"`
	Title     string         `json:"title" gorm:"not null"`
	Values    datatypes.JSON `json:"values"`
	Order     int            `json:"order" gorm:"default:0"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID"`
}

// BeforeCreate derives the slug from the title, keeping it unique per owner.
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.Slug == "" {
		s := slug.Make(l.Title)

		var count int64
		tx.Model(&Listing{}).Where("owner_id = ? AND slug = ?", l.OwnerID, s).Count(&count)
		if count > 0 {
			s = s + "-" + uuid.New().String()[:8]
		}

		l.Slug = s
	}
	return nil
}
