package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
)

type FleetSubscribeInput struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
}

// SubscribeToFleet signs a visitor up for an owner's new-vehicle updates.
// The route is gated by the owner's plan; this handler only stores the
// subscriber.
func SubscribeToFleet(c *fiber.Ctx) error {
	ownerID := c.Params("owner_id")

	var owner model.Owner
	if err := database.GetDB().First(&owner, ownerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Owner not found",
		})
	}

	input := new(FleetSubscribeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	addr := strings.ToLower(strings.TrimSpace(input.Email))
	if addr == "" || !strings.Contains(addr, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid email address is required",
		})
	}

	var existing model.FleetSubscriber
	if err := database.GetDB().
		Where("owner_id = ? AND email = ?", owner.ID, addr).
		First(&existing).Error; err == nil {
		return c.JSON(fiber.Map{
			"message": "You are already subscribed",
		})
	}

	subscriber := model.FleetSubscriber{
		OwnerID: owner.ID,
		Name:    input.Name,
		Email:   addr,
		Source:  "listing_page",
	}

	if err := database.GetDB().Create(&subscriber).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not subscribe",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Subscribed to fleet updates",
	})
}

// ListFleetSubscribers returns the owner's subscriber list.
func ListFleetSubscribers(c *fiber.Ctx) error {
	owner, err := currentOwner(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Owner profile required",
		})
	}

	var subscribers []model.FleetSubscriber
	if err := database.GetDB().
		Where("owner_id = ?", owner.ID).
		Order("subscribed_at desc").
		Find(&subscribers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch subscribers",
		})
	}

	return c.JSON(fiber.Map{
		"subscribers": subscribers,
		"total":       len(subscribers),
	})
}
