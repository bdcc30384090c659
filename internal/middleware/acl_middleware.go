package middleware

import (
	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

const MaxListingImages = 16

// CheckListingOwnership verifies that the listing in the URL belongs to
// the authenticated owner.
func CheckListingOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		listingID := c.Params("id")

		var listing model.Listing
		if err := database.DB.First(&listing, listingID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}

		var owner model.Owner
		if err := database.DB.Where("user_id = ?", claims.UserID).First(&owner).Error; err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Owner profile required",
			})
		}

		if listing.OwnerID != owner.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to access this listing",
			})
		}

		c.Locals("owner", &owner)
		return c.Next()
	}
}

// CheckImageLimit rejects uploads once a listing already carries the
// maximum number of photos.
func CheckImageLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		listingID := c.Params("id")

		var imageCount int64
		database.DB.Model(&model.ListingImage{}).
			Where("listing_id = ?", listingID).
			Count(&imageCount)

		if imageCount >= MaxListingImages {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Maximum image limit reached",
				"limit": MaxListingImages,
			})
		}

		return c.Next()
	}
}
