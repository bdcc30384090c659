package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/notify"
	"orangerides_backend/pkg/paystack"
	"orangerides_backend/pkg/plan"
	"orangerides_backend/pkg/subscription"
)

var (
	payCatalog   plan.Catalog
	payActivator *subscription.Activator
	payGateway   *paystack.Client
	paySink      *notify.Sink
)

func InitPaymentController(catalog plan.Catalog, activator *subscription.Activator, gateway *paystack.Client, sink *notify.Sink) {
	payCatalog = catalog
	payActivator = activator
	payGateway = gateway
	paySink = sink
}

// VerifyPayment is polled by the checkout return page. It asks the
// provider for the transaction by reference, cross-checks the paid amount
// against the plan price, and activates the subscription on a match. The
// webhook may have already activated the same reference; activation is
// idempotent so the double call converges.
func VerifyPayment(c *fiber.Ctx) error {
	reference := c.Params("reference")

	data, err := payGateway.VerifyTransaction(reference)
	if err != nil {
		if errors.Is(err, paystack.ErrMissingSecretKey) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Payment provider is not configured",
			})
		}
		if errors.Is(err, paystack.ErrProviderUnavailable) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"success": false,
				"message": "Could not reach payment provider. Please try again.",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Could not verify payment",
		})
	}

	if data.Status != "success" {
		return c.JSON(fiber.Map{
			"success": false,
			"message": "Payment is not completed yet",
		})
	}

	key, ok := plan.ParseKey(data.Metadata.Plan)
	if !ok || key == plan.None {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment metadata does not name a valid plan",
		})
	}

	// The provider accepted the charge, but the amount must still match
	// the catalog price. A mismatch is rejected and flagged, never
	// silently activated.
	if data.Amount != payCatalog.PriceFor(key) {
		message := fmt.Sprintf("Payment %s paid %d but plan %s costs %d",
			data.Reference, data.Amount, key, payCatalog.PriceFor(key))
		if err := paySink.Append(message, model.EventPaymentFailed); err != nil {
			log.Printf("Could not record payment_failed notification: %v", err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment amount does not match the plan price",
		})
	}

	ownerID, err := strconv.ParseUint(data.Metadata.UserID, 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment metadata does not name an account",
		})
	}

	if err := payActivator.Activate(uint(ownerID), key, data.Reference); err != nil {
		if errors.Is(err, subscription.ErrOwnerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Owner account not found",
			})
		}
		log.Printf("Could not activate subscription for owner %d: %v", ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Could not activate subscription",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment verified and subscription activated",
	})
}

// HandlePaymentWebhook ingests provider callbacks. The signature is an
// HMAC-SHA512 of the raw body; the same buffered bytes are used for the
// check and the parse. Nothing is read from the payload before the
// signature verifies.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("X-Signature")

	valid, err := payGateway.ValidateWebhookSignature(payload, signature)
	if err != nil {
		// Missing webhook secret is a deployment fault, not the
		// provider's: never fall open.
		log.Printf("Webhook rejected: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Webhook secret is not configured",
		})
	}
	if !valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	var event paystack.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		// Signed but unparseable; acknowledge so the provider does not
		// redeliver a payload we will never understand.
		log.Printf("Could not decode webhook payload: %v", err)
		return c.JSON(fiber.Map{"received": true})
	}

	if event.Event != paystack.EventChargeSuccess {
		return c.JSON(fiber.Map{"received": true})
	}

	if event.Data.Metadata.UserID == "" || event.Data.Metadata.Plan == "" {
		log.Printf("charge.success %s is missing user_id or plan metadata", event.Data.Reference)
		return c.JSON(fiber.Map{"received": true})
	}

	key, ok := plan.ParseKey(event.Data.Metadata.Plan)
	if !ok || key == plan.None {
		log.Printf("charge.success %s names unknown plan %q", event.Data.Reference, event.Data.Metadata.Plan)
		return c.JSON(fiber.Map{"received": true})
	}

	ownerID, err := strconv.ParseUint(event.Data.Metadata.UserID, 10, 32)
	if err != nil {
		log.Printf("charge.success %s has malformed user_id %q", event.Data.Reference, event.Data.Metadata.UserID)
		return c.JSON(fiber.Map{"received": true})
	}

	if event.Data.Amount != payCatalog.PriceFor(key) {
		message := fmt.Sprintf("Webhook %s paid %d but plan %s costs %d",
			event.Data.Reference, event.Data.Amount, key, payCatalog.PriceFor(key))
		if err := paySink.Append(message, model.EventPaymentFailed); err != nil {
			log.Printf("Could not record payment_failed notification: %v", err)
		}
		return c.JSON(fiber.Map{"received": true})
	}

	if err := payActivator.Activate(uint(ownerID), key, event.Data.Reference); err != nil {
		// 500 makes the provider redeliver; activation is idempotent
		// so the retry converges instead of duplicating rows.
		log.Printf("Could not activate subscription from webhook %s: %v", event.Data.Reference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not activate subscription",
		})
	}

	return c.JSON(fiber.Map{"received": true})
}
