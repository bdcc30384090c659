package model

import (
	"time"

	"gorm.io/gorm"
)

// ListingView is a single page view of a listing.
type ListingView struct {
	gorm.Model
	ListingID uint      `json:"listing_id" gorm:"index"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	IP        string    `json:"ip" gorm:"index"`
	SessionID string    `json:"session_id" gorm:"index"`
	UserAgent string    `json:"user_agent"`
	ViewedAt  time.Time `json:"viewed_at" gorm:"index"`
	IsUnique  bool      `json:"is_unique" gorm:"default:true"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID"`
	User    *User   `json:"-" gorm:"foreignKey:UserID"`
}

// ListingStats aggregates view counters per listing.
type ListingStats struct {
	gorm.Model
	ListingID    uint      `json:"listing_id" gorm:"uniqueIndex"`
	TotalViews   int64     `json:"total_views"`
	UniqueViews  int64     `json:"unique_views"`
	DailyViews   int64     `json:"daily_views"`
	WeeklyViews  int64     `json:"weekly_views"`
	MonthlyViews int64     `json:"monthly_views"`
	LastUpdated  time.Time `json:"last_updated"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID"`
}

// BeforeCreate marks the view as non-unique when the same IP viewed the
// listing within the last 24 hours.
func (lv *ListingView) BeforeCreate(tx *gorm.DB) error {
	var count int64
	tx.Model(&ListingView{}).
		Where("listing_id = ? AND ip = ? AND viewed_at > ?",
			lv.ListingID,
			lv.IP,
			time.Now().Add(-24*time.Hour)).
		Count(&count)

	if count > 0 {
		lv.IsUnique = false
	}

	return nil
}

// AfterCreate rolls the view into the per-listing counters.
func (lv *ListingView) AfterCreate(tx *gorm.DB) error {
	var stats ListingStats
	tx.FirstOrCreate(&stats, ListingStats{ListingID: lv.ListingID})

	updates := map[string]interface{}{
		"total_views":   gorm.Expr("total_views + ?", 1),
		"daily_views":   gorm.Expr("daily_views + ?", 1),
		"weekly_views":  gorm.Expr("weekly_views + ?", 1),
		"monthly_views": gorm.Expr("monthly_views + ?", 1),
		"last_updated":  time.Now(),
	}

	if lv.IsUnique {
		updates["unique_views"] = gorm.Expr("unique_views + ?", 1)
	}

	return tx.Model(&stats).Updates(updates).Error
}
