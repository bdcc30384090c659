package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/email"
	"orangerides_backend/pkg/paystack"
	"orangerides_backend/pkg/plan"
	"orangerides_backend/pkg/subscription"
)

type SelectPlanInput struct {
	Plan string `json:"plan" validate:"required"`
}

var (
	subCatalog   plan.Catalog
	subActivator *subscription.Activator
	subGateway   *paystack.Client
	demoPayments bool
)

func InitSubscriptionController(catalog plan.Catalog, activator *subscription.Activator, gateway *paystack.Client, demoMode bool) {
	subCatalog = catalog
	subActivator = activator
	subGateway = gateway
	demoPayments = demoMode
}

// ListPlans returns the static plan catalog.
func ListPlans(c *fiber.Ctx) error {
	return c.JSON(subCatalog.List())
}

// SelectPlan either activates directly (demo/no-payment deployments) or
// starts a gateway checkout and returns the redirect URL.
func SelectPlan(c *fiber.Ctx) error {
	input := new(SelectPlanInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	key, ok := plan.ParseKey(input.Plan)
	if !ok || key == plan.None {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown subscription plan",
		})
	}

	owner, err := currentOwner(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Owner profile required to subscribe",
		})
	}

	if demoPayments {
		if err := subActivator.Activate(owner.ID, key, "demo"); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not activate subscription",
			})
		}
		return c.JSON(fiber.Map{
			"message": "Subscription activated",
		})
	}

	var user model.User
	if err := database.GetDB().First(&user, owner.UserID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch account",
		})
	}

	metadata := paystack.Metadata{
		UserID: strconv.FormatUint(uint64(owner.ID), 10),
		Plan:   string(key),
	}

	data, err := subGateway.InitializeTransaction(user.Email, subCatalog.PriceFor(key), metadata)
	if err != nil {
		if err == paystack.ErrMissingSecretKey {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Payment provider is not configured",
			})
		}
		log.Printf("Could not initialize transaction: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Could not reach payment provider. Please try again.",
		})
	}

	return c.JSON(fiber.Map{
		"authorization_url": data.AuthorizationURL,
		"reference":         data.Reference,
	})
}

// GetMySubscription returns the owner's current subscription.
func GetMySubscription(c *fiber.Ctx) error {
	owner, err := currentOwner(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Owner profile required",
		})
	}

	var sub model.Subscription
	if err := database.GetDB().Where("owner_id = ?", owner.ID).First(&sub).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No subscription found",
		})
	}

	return c.JSON(sub)
}

// CancelSubscription suspends the owner's subscription at their request.
// Published listings stay online until the paid period lapses.
func CancelSubscription(c *fiber.Ctx) error {
	owner, err := currentOwner(c)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Owner profile required",
		})
	}

	var sub model.Subscription
	if err := database.GetDB().
		Where("owner_id = ? AND status = ?", owner.ID, model.SubscriptionStatusActive).
		First(&sub).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	}

	if err := database.GetDB().Model(&sub).Update("status", model.SubscriptionStatusSuspended).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update subscription status",
		})
	}

	if email.GlobalEmailService != nil {
		var user model.User
		if err := database.GetDB().First(&user, owner.UserID).Error; err == nil {
			if err := email.GlobalEmailService.SendSubscriptionCancelledEmail(
				user.Email, owner.BusinessName, sub.PlanName, sub.ExpiryDate); err != nil {
				log.Printf("Could not send subscription cancellation email: %v", err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"message":      "Subscription cancelled successfully",
		"active_until": sub.ExpiryDate.Format(time.RFC3339),
	})
}
