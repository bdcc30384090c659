package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
)

// RecordListingView logs a public page view. Uniqueness per IP and the
// counter rollup happen in the model hooks.
func RecordListingView(c *fiber.Ctx) error {
	slugParam := c.Params("slug")

	var listing model.Listing
	if err := database.GetDB().
		Where("slug = ? AND status = ?", slugParam, model.ListingStatusApproved).
		First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	view := model.ListingView{
		ListingID: listing.ID,
		IP:        c.IP(),
		SessionID: c.Get("X-Session-ID"),
		UserAgent: c.Get("User-Agent"),
		ViewedAt:  time.Now(),
	}

	if err := database.GetDB().Create(&view).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not record view",
		})
	}

	return c.SendStatus(fiber.StatusCreated)
}

// GetOwnerDashboardStats aggregates the owner's dashboard numbers.
func GetOwnerDashboardStats(c *fiber.Ctx) error {
	owner, err := currentOwner(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Owner profile required",
		})
	}

	db := database.GetDB()

	var totalListings, approvedListings, pendingListings int64
	db.Model(&model.Listing{}).Where("owner_id = ?", owner.ID).Count(&totalListings)
	db.Model(&model.Listing{}).Where("owner_id = ? AND status = ?", owner.ID, model.ListingStatusApproved).Count(&approvedListings)
	db.Model(&model.Listing{}).Where("owner_id = ? AND status = ?", owner.ID, model.ListingStatusPending).Count(&pendingListings)

	var newInquiries int64
	db.Model(&model.Inquiry{}).
		Joins("JOIN listings ON listings.id = inquiries.listing_id").
		Where("listings.owner_id = ? AND inquiries.status = ?", owner.ID, model.InquiryStatusNew).
		Count(&newInquiries)

	type viewTotals struct {
		TotalViews   int64 `json:"total_views"`
		UniqueViews  int64 `json:"unique_views"`
		WeeklyViews  int64 `json:"weekly_views"`
		MonthlyViews int64 `json:"monthly_views"`
	}

	var views viewTotals
	db.Model(&model.ListingStats{}).
		Select("COALESCE(SUM(total_views),0) as total_views, COALESCE(SUM(unique_views),0) as unique_views, COALESCE(SUM(weekly_views),0) as weekly_views, COALESCE(SUM(monthly_views),0) as monthly_views").
		Joins("JOIN listings ON listings.id = listing_stats.listing_id").
		Where("listings.owner_id = ?", owner.ID).
		Scan(&views)

	var fleetSubscribers int64
	db.Model(&model.FleetSubscriber{}).Where("owner_id = ?", owner.ID).Count(&fleetSubscribers)

	return c.JSON(fiber.Map{
		"listings": fiber.Map{
			"total":    totalListings,
			"approved": approvedListings,
			"pending":  pendingListings,
		},
		"inquiries": fiber.Map{
			"new": newInquiries,
		},
		"views":             views,
		"fleet_subscribers": fleetSubscribers,
	})
}

// GetListingStats returns per-listing view counters for the owner.
func GetListingStats(c *fiber.Ctx) error {
	owner, err := currentOwner(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Owner profile required",
		})
	}

	var listing model.Listing
	if err := database.GetDB().
		Where("id = ? AND owner_id = ?", c.Params("id"), owner.ID).
		First(&listing).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	var stats model.ListingStats
	if err := database.GetDB().Where("listing_id = ?", listing.ID).First(&stats).Error; err != nil {
		// No views yet; return zeroed counters instead of a 404.
		stats = model.ListingStats{ListingID: listing.ID}
	}

	return c.JSON(stats)
}
