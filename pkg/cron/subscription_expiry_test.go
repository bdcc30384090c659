package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/plan"
)

func setupExpiryTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Owner{},
		&model.Subscription{},
	))

	database.DB = db
	return db
}

func seedSubscribedOwner(t *testing.T, db *gorm.DB, email string, status model.SubscriptionStatus, expiry time.Time) (*model.Owner, *model.Subscription) {
	t.Helper()

	user := model.User{
		Email:    email,
		Password: "hashed",
		Username: email,
		Role:     model.RoleOwner,
	}
	require.NoError(t, db.Create(&user).Error)

	owner := model.Owner{
		UserID:       user.ID,
		BusinessName: "Lagos Wheels",
		CurrentPlan:  string(plan.Monthly),
		Status:       model.OwnerStatusActive,
	}
	require.NoError(t, db.Create(&owner).Error)

	sub := model.Subscription{
		OwnerID:    owner.ID,
		OwnerName:  owner.BusinessName,
		PlanKey:    string(plan.Monthly),
		PlanName:   "Monthly",
		Status:     status,
		StartDate:  expiry.AddDate(0, -1, 0),
		ExpiryDate: expiry,
	}
	require.NoError(t, db.Create(&sub).Error)

	return &owner, &sub
}

func TestExpireLapsedActiveSubscription(t *testing.T) {
	db := setupExpiryTest(t)
	owner, sub := seedSubscribedOwner(t, db, "active@lagoswheels.ng",
		model.SubscriptionStatusActive, time.Now().AddDate(0, 0, -1))

	expireLapsedSubscriptions()

	var updatedSub model.Subscription
	require.NoError(t, db.First(&updatedSub, sub.ID).Error)
	assert.Equal(t, model.SubscriptionStatusExpired, updatedSub.Status)

	var updatedOwner model.Owner
	require.NoError(t, db.First(&updatedOwner, owner.ID).Error)
	assert.Equal(t, string(plan.None), updatedOwner.CurrentPlan)
}

func TestExpireLapsedCancelledSubscription(t *testing.T) {
	db := setupExpiryTest(t)

	// A cancelled subscription keeps its quota until the paid period
	// ends, then lapses like any other.
	owner, sub := seedSubscribedOwner(t, db, "cancelled@lagoswheels.ng",
		model.SubscriptionStatusSuspended, time.Now().AddDate(0, -1, 0))

	expireLapsedSubscriptions()

	var updatedSub model.Subscription
	require.NoError(t, db.First(&updatedSub, sub.ID).Error)
	assert.Equal(t, model.SubscriptionStatusExpired, updatedSub.Status)

	var updatedOwner model.Owner
	require.NoError(t, db.First(&updatedOwner, owner.ID).Error)
	assert.Equal(t, string(plan.None), updatedOwner.CurrentPlan)
}

func TestExpireLeavesCurrentSubscriptionsAlone(t *testing.T) {
	db := setupExpiryTest(t)

	activeOwner, activeSub := seedSubscribedOwner(t, db, "current@lagoswheels.ng",
		model.SubscriptionStatusActive, time.Now().AddDate(0, 0, 10))
	cancelledOwner, cancelledSub := seedSubscribedOwner(t, db, "paiduntil@lagoswheels.ng",
		model.SubscriptionStatusSuspended, time.Now().AddDate(0, 0, 10))

	expireLapsedSubscriptions()

	var sub model.Subscription
	require.NoError(t, db.First(&sub, activeSub.ID).Error)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)

	sub = model.Subscription{}
	require.NoError(t, db.First(&sub, cancelledSub.ID).Error)
	assert.Equal(t, model.SubscriptionStatusSuspended, sub.Status)

	var owner model.Owner
	require.NoError(t, db.First(&owner, activeOwner.ID).Error)
	assert.Equal(t, string(plan.Monthly), owner.CurrentPlan)

	owner = model.Owner{}
	require.NoError(t, db.First(&owner, cancelledOwner.ID).Error)
	assert.Equal(t, string(plan.Monthly), owner.CurrentPlan)
}

func TestExpireIgnoresAlreadyExpired(t *testing.T) {
	db := setupExpiryTest(t)
	owner, _ := seedSubscribedOwner(t, db, "done@lagoswheels.ng",
		model.SubscriptionStatusExpired, time.Now().AddDate(0, -2, 0))

	// The owner resubscribed through another channel; the sweep must not
	// touch their plan because of the old expired row.
	require.NoError(t, db.Model(&model.Owner{}).
		Where("id = ?", owner.ID).
		Update("current_plan", string(plan.Weekly)).Error)

	expireLapsedSubscriptions()

	var updatedOwner model.Owner
	require.NoError(t, db.First(&updatedOwner, owner.ID).Error)
	assert.Equal(t, string(plan.Weekly), updatedOwner.CurrentPlan)
}
