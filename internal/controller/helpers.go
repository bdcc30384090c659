package controller

import (
	"github.com/gofiber/fiber/v2"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/notify"
	"orangerides_backend/pkg/plan"
	"orangerides_backend/pkg/utils/jwt"
)

// Shared controller state, wired once from main.
var (
	listingCatalog plan.Catalog
	adminSink      *notify.Sink
)

func InitListingController(catalog plan.Catalog, sink *notify.Sink) {
	listingCatalog = catalog
	adminSink = sink
}

// currentOwner resolves the owner profile for the authenticated user.
func currentOwner(c *fiber.Ctx) (*model.Owner, error) {
	if cached, ok := c.Locals("owner").(*model.Owner); ok && cached != nil {
		return cached, nil
	}

	claims := c.Locals("user").(*jwt.Claims)

	var owner model.Owner
	if err := database.GetDB().Where("user_id = ?", claims.UserID).First(&owner).Error; err != nil {
		return nil, err
	}

	c.Locals("owner", &owner)
	return &owner, nil
}
