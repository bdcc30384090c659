package controller

import (
	"github.com/gofiber/fiber/v2"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
)

// ListPendingListings shows the moderation queue.
func ListPendingListings(c *fiber.Ctx) error {
	var listings []model.Listing
	if err := database.GetDB().
		Where("status = ?", model.ListingStatusPending).
		Preload("Owner").
		Order("created_at asc").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch pending listings",
		})
	}

	return c.JSON(listings)
}

func setListingStatus(c *fiber.Ctx, status model.ListingStatus) error {
	id := c.Params("id")

	var listing model.Listing
	if err := database.GetDB().First(&listing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	if err := database.GetDB().Model(&listing).Update("status", status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update listing status",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Listing status updated",
		"status":  status,
	})
}

func ApproveListing(c *fiber.Ctx) error {
	return setListingStatus(c, model.ListingStatusApproved)
}

func RejectListing(c *fiber.Ctx) error {
	return setListingStatus(c, model.ListingStatusRejected)
}

func SuspendListing(c *fiber.Ctx) error {
	return setListingStatus(c, model.ListingStatusSuspended)
}

// ListOwners returns all owner accounts for the admin dashboard.
func ListOwners(c *fiber.Ctx) error {
	query := database.GetDB().Preload("User")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var owners []model.Owner
	if err := query.Order("created_at desc").Find(&owners).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch owners",
		})
	}

	return c.JSON(owners)
}

// ApproveOwner activates a pending business account. Approval alone does
// not grant a listing quota; that still requires a subscription.
func ApproveOwner(c *fiber.Ctx) error {
	id := c.Params("id")

	var owner model.Owner
	if err := database.GetDB().First(&owner, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Owner not found",
		})
	}

	if err := database.GetDB().Model(&owner).Update("status", model.OwnerStatusActive).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update owner status",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Owner approved",
	})
}

// SuspendOwner blocks a business from creating listings.
func SuspendOwner(c *fiber.Ctx) error {
	id := c.Params("id")

	var owner model.Owner
	if err := database.GetDB().First(&owner, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Owner not found",
		})
	}

	if err := database.GetDB().Model(&owner).Update("status", model.OwnerStatusSuspended).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update owner status",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Owner suspended",
	})
}
