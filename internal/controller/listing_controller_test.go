package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/notify"
	"orangerides_backend/pkg/plan"
)

func setupListingTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Owner{},
		&model.Listing{},
		&model.ListingImage{},
		&model.ListingFeature{},
		&model.AdminNotification{},
	))

	database.DB = db
	InitListingController(plan.NewCatalog(), notify.NewSink(db))
	return db
}

func listingTestApp(owner *model.Owner) *fiber.App {
	app := fiber.New()
	app.Post("/listings",
		func(c *fiber.Ctx) error {
			c.Locals("owner", owner)
			return c.Next()
		},
		CreateListing,
	)
	return app
}

func seedListingOwner(t *testing.T, db *gorm.DB, planKey plan.Key, listings int) *model.Owner {
	t.Helper()

	user := model.User{
		Email:    "fleet@lagoswheels.ng",
		Password: "hashed",
		Username: "lagoswheels",
		Role:     model.RoleOwner,
	}
	require.NoError(t, db.Create(&user).Error)

	owner := model.Owner{
		UserID:       user.ID,
		BusinessName: "Lagos Wheels",
		CurrentPlan:  string(planKey),
		Status:       model.OwnerStatusActive,
	}
	require.NoError(t, db.Create(&owner).Error)

	for i := 0; i < listings; i++ {
		listing := model.Listing{
			Title:       "Existing Vehicle",
			Type:        model.VehicleTypeSedan,
			PricePerDay: 20000,
			Currency:    model.CurrencyNGN,
			OwnerID:     owner.ID,
			CountryCode: "NG",
			CountryName: "Nigeria",
			StateCode:   "LA",
			StateName:   "Lagos",
			City:        "Ikeja",
		}
		require.NoError(t, db.Create(&listing).Error)
	}

	return &owner
}

func createListingRequest(t *testing.T, app *fiber.App, title string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"title":         title,
		"type":          "Sedan",
		"price_per_day": 25000,
		"currency":      "NGN",
		"description":   "Clean Toyota Camry with driver",
		"country_code":  "NG",
		"country_name":  "Nigeria",
		"state_code":    "LA",
		"state_name":    "Lagos",
		"city":          "Ikeja",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/listings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func limitWarningCount(db *gorm.DB) int64 {
	var count int64
	db.Model(&model.AdminNotification{}).
		Where("event_type = ?", model.EventLimitWarning).
		Count(&count)
	return count
}

func TestCreateListingStartsPending(t *testing.T) {
	db := setupListingTest(t)
	owner := seedListingOwner(t, db, plan.Monthly, 0)

	resp := createListingRequest(t, listingTestApp(owner), "Toyota Camry 2022")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var listing model.Listing
	require.NoError(t, db.Where("title = ?", "Toyota Camry 2022").First(&listing).Error)
	assert.Equal(t, model.ListingStatusPending, listing.Status)
	assert.Equal(t, "toyota-camry-2022", listing.Slug)
}

func TestCreateListingBlocksAtQuota(t *testing.T) {
	db := setupListingTest(t)
	owner := seedListingOwner(t, db, plan.Weekly, 9)

	// The middleware check may have passed on a stale count; the handler
	// re-checks right before the write.
	resp := createListingRequest(t, listingTestApp(owner), "One Too Many")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	db.Model(&model.Listing{}).Where("owner_id = ?", owner.ID).Count(&count)
	assert.Equal(t, int64(9), count)
}

func TestCreateListingWarnsNearLimit(t *testing.T) {
	db := setupListingTest(t)
	owner := seedListingOwner(t, db, plan.Weekly, 7)

	// 8 of 9 crosses the 80% threshold.
	resp := createListingRequest(t, listingTestApp(owner), "Eighth Vehicle")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(1), limitWarningCount(db))

	var notification model.AdminNotification
	require.NoError(t, db.Where("event_type = ?", model.EventLimitWarning).First(&notification).Error)
	assert.Contains(t, notification.Message, "Lagos Wheels")
	assert.Contains(t, notification.Message, "8 of 9")
}

func TestCreateListingWarningRefiresPastThreshold(t *testing.T) {
	db := setupListingTest(t)
	owner := seedListingOwner(t, db, plan.Weekly, 7)

	app := listingTestApp(owner)

	resp := createListingRequest(t, app, "Eighth Vehicle")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = createListingRequest(t, app, "Ninth Vehicle")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Every creation at or past the threshold records a warning.
	assert.Equal(t, int64(2), limitWarningCount(db))
}

func TestCreateListingNoWarningBelowThreshold(t *testing.T) {
	db := setupListingTest(t)
	owner := seedListingOwner(t, db, plan.Monthly, 10)

	resp := createListingRequest(t, listingTestApp(owner), "Eleventh Vehicle")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(0), limitWarningCount(db))
}

func TestCreateListingNoWarningOnYearly(t *testing.T) {
	db := setupListingTest(t)
	owner := seedListingOwner(t, db, plan.Yearly, 100)

	resp := createListingRequest(t, listingTestApp(owner), "Another Vehicle")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(0), limitWarningCount(db))
}

func TestCreateListingSlugUniquePerOwner(t *testing.T) {
	db := setupListingTest(t)
	owner := seedListingOwner(t, db, plan.Monthly, 0)

	app := listingTestApp(owner)

	// Several same-titled creations land within the same second; every
	// slug must still come out unique or the composite index rejects the
	// insert.
	for i := 0; i < 4; i++ {
		resp := createListingRequest(t, app, "Toyota Camry")
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var listings []model.Listing
	require.NoError(t, db.Where("owner_id = ?", owner.ID).Order("id asc").Find(&listings).Error)
	require.Len(t, listings, 4)
	assert.Equal(t, "toyota-camry", listings[0].Slug)

	seen := make(map[string]bool)
	for _, listing := range listings {
		assert.False(t, seen[listing.Slug], "duplicate slug %q", listing.Slug)
		seen[listing.Slug] = true
	}
}
