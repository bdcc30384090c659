package middleware

import (
	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/plan"
	"orangerides_backend/pkg/subscription"
	"orangerides_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

var planCatalog plan.Catalog

// Init injects the plan catalog built at startup.
func Init(catalog plan.Catalog) {
	planCatalog = catalog
}

// CheckListingQuota gates listing creation on the owner's plan. The same
// check runs again inside the create handler right before the write; the
// count is still read non-atomically, so the quota stays a soft limit.
func CheckListingQuota() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		var owner model.Owner
		if err := database.DB.Where("user_id = ?", claims.UserID).First(&owner).Error; err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Owner profile required to create listings",
			})
		}

		if owner.Status != model.OwnerStatusActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Your account is not active yet",
			})
		}

		if plan.Key(owner.CurrentPlan) == plan.None {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "An active subscription is required to create listings",
			})
		}

		count, err := owner.CountListings(database.DB)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not count listings",
			})
		}

		if !subscription.CanCreateListing(planCatalog, &owner, count) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":         "You have reached your listing limit. Please upgrade your plan.",
				"current_count": count,
				"max_limit":     planCatalog.QuotaFor(plan.Key(owner.CurrentPlan)),
			})
		}

		c.Locals("owner", &owner)
		return c.Next()
	}
}

// CheckFeatureAccess gates a route on the listing owner's plan features.
func CheckFeatureAccess(feature subscription.Feature) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID := c.Params("owner_id")

		var owner model.Owner
		if err := database.DB.First(&owner, ownerID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Owner not found",
			})
		}

		if !subscription.CanUseFeature(plan.Key(owner.CurrentPlan), feature) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "This feature requires a higher subscription plan",
			})
		}

		return c.Next()
	}
}
