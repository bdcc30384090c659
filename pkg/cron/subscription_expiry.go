package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/email"
	"orangerides_backend/pkg/plan"
)

func InitSubscriptionExpiryCron() {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		checkExpiringSubscriptions()
		expireLapsedSubscriptions()
	})

	if err != nil {
		log.Printf("Could not initialize subscription expiry cron: %v", err)
		return
	}

	c.Start()
}

func checkExpiringSubscriptions() {
	log.Println("Checking for expiring subscriptions...")

	warningDays := []int{7, 3}

	for _, days := range warningDays {
		var subs []model.Subscription
		targetDate := time.Now().AddDate(0, 0, days).Format("2006-01-02")

		err := database.DB.
			Where("DATE(expiry_date) = ? AND status = ?", targetDate, model.SubscriptionStatusActive).
			Find(&subs).Error
		if err != nil {
			log.Printf("Error fetching expiring subscriptions: %v", err)
			continue
		}

		log.Printf("Found %d subscriptions expiring in %d days", len(subs), days)

		if email.GlobalEmailService == nil {
			continue
		}

		for _, sub := range subs {
			var owner model.Owner
			if err := database.DB.Preload("User").First(&owner, sub.OwnerID).Error; err != nil {
				log.Printf("Error loading owner %d for expiry warning: %v", sub.OwnerID, err)
				continue
			}

			err := email.GlobalEmailService.SendSubscriptionExpiryWarning(
				owner.User.Email,
				owner.BusinessName,
				sub.PlanName,
				sub.ExpiryDate,
				days,
			)
			if err != nil {
				log.Printf("Error sending expiry warning to %s: %v", owner.User.Email, err)
			} else {
				log.Printf("Sent expiry warning to %s for subscription expiring in %d days", owner.User.Email, days)
			}
		}
	}
}

// expireLapsedSubscriptions flips overdue subscriptions to expired and
// drops the owner back to no plan, which zeroes their listing quota.
// Existing listings are not touched; they just cannot be added to.
// Cancelled (suspended) subscriptions keep their quota until the paid
// period ends, so they lapse here too.
func expireLapsedSubscriptions() {
	var subs []model.Subscription
	err := database.DB.
		Where("expiry_date < ? AND status IN ?", time.Now(), []model.SubscriptionStatus{
			model.SubscriptionStatusActive,
			model.SubscriptionStatusSuspended,
		}).
		Find(&subs).Error
	if err != nil {
		log.Printf("Error fetching lapsed subscriptions: %v", err)
		return
	}

	for _, sub := range subs {
		if err := database.DB.Model(&sub).Update("status", model.SubscriptionStatusExpired).Error; err != nil {
			log.Printf("Error expiring subscription %d: %v", sub.ID, err)
			continue
		}

		if err := database.DB.Model(&model.Owner{}).
			Where("id = ?", sub.OwnerID).
			Update("current_plan", string(plan.None)).Error; err != nil {
			log.Printf("Error resetting plan for owner %d: %v", sub.OwnerID, err)
			continue
		}

		log.Printf("Expired subscription %d for owner %d", sub.ID, sub.OwnerID)
	}
}
