package subscription

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/email"
	"orangerides_backend/pkg/notify"
	"orangerides_backend/pkg/plan"
)

var (
	ErrOwnerNotFound = errors.New("owner not found")
	ErrUnknownPlan   = errors.New("unknown subscription plan")
)

// Activator records a successful payment as an updated subscription and
// flips the owner's plan and status. Activate is idempotent: re-running
// it with the same inputs overwrites the owner's single subscription row
// instead of creating a duplicate, which is what at-least-once webhook
// delivery requires.
type Activator struct {
	db      *gorm.DB
	catalog plan.Catalog
	sink    *notify.Sink
}

func NewActivator(db *gorm.DB, catalog plan.Catalog, sink *notify.Sink) *Activator {
	return &Activator{db: db, catalog: catalog, sink: sink}
}

func (a *Activator) Activate(ownerID uint, key plan.Key, paymentReference string) error {
	p, ok := a.catalog.Get(key)
	if !ok {
		return ErrUnknownPlan
	}

	var owner model.Owner
	if err := a.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOwnerNotFound
		}
		return err
	}

	now := time.Now()
	expiry := a.catalog.ExpiryFrom(key, now)

	var sub model.Subscription
	err := a.db.Where("owner_id = ?", owner.ID).First(&sub).Error
	isRenewal := err == nil
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = model.Subscription{
			OwnerID:              owner.ID,
			OwnerName:            owner.BusinessName,
			PlanKey:              string(key),
			PlanName:             p.DisplayName,
			Status:               model.SubscriptionStatusActive,
			StartDate:            now,
			ExpiryDate:           expiry,
			LastPaymentReference: paymentReference,
		}
		if err := a.db.Create(&sub).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		sub.OwnerName = owner.BusinessName
		sub.PlanKey = string(key)
		sub.PlanName = p.DisplayName
		sub.Status = model.SubscriptionStatusActive
		sub.StartDate = now
		sub.ExpiryDate = expiry
		sub.LastPaymentReference = paymentReference
		if err := a.db.Save(&sub).Error; err != nil {
			return err
		}
	}

	if err := a.db.Model(&owner).Updates(map[string]interface{}{
		"current_plan": string(key),
		"status":       model.OwnerStatusActive,
	}).Error; err != nil {
		return err
	}

	// Informational only; a missing notification never rolls back the
	// subscription writes.
	message := fmt.Sprintf("%s subscribed to the %s plan (ref %s)",
		owner.BusinessName, p.DisplayName, paymentReference)
	if err := a.sink.Append(message, model.EventNewSubscription); err != nil {
		log.Printf("Could not record new_subscription notification: %v", err)
	}

	if email.GlobalEmailService != nil {
		var user model.User
		if err := a.db.First(&user, owner.UserID).Error; err == nil {
			if err := email.GlobalEmailService.SendSubscriptionStartedEmail(
				user.Email, owner.BusinessName, p.DisplayName,
				p.PriceKobo, "NGN", p.ListingQuota, expiry, isRenewal,
			); err != nil {
				log.Printf("Could not send subscription email to %s: %v", user.Email, err)
			}
		}
	}

	return nil
}
