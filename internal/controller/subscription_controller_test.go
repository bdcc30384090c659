package controller

import (
	"bytes"
	"encoding/json"
	"io"
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
	"orangerides_backend/pkg/paystack"
	"orangerides_backend/pkg/plan"
	"orangerides_backend/pkg/subscription"
	"orangerides_backend/pkg/utils/jwt"
)

func setupSubscriptionTest(t *testing.T, demoMode bool) (*gorm.DB, *model.Owner, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Owner{},
		&model.Subscription{},
		&model.AdminNotification{},
	))

	database.DB = db

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
		CurrentPlan:  string(plan.None),
		Status:       model.OwnerStatusPendingApproval,
	}
	require.NoError(t, db.Create(&owner).Error)

	catalog := plan.NewCatalog()
	sink := notify.NewSink(db)
	activator := subscription.NewActivator(db, catalog, sink)
	InitSubscriptionController(catalog, activator, &paystack.Client{}, demoMode)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Claims{UserID: user.ID, Username: user.Username})
		return c.Next()
	})
	app.Get("/subscriptions/plans", ListPlans)
	app.Post("/subscriptions/select", SelectPlan)
	app.Get("/subscriptions/my", GetMySubscription)

	return db, &owner, app
}

func TestListPlans(t *testing.T) {
	_, _, app := setupSubscriptionTest(t, true)

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/plans", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var plans []plan.Plan
	require.NoError(t, json.Unmarshal(body, &plans))
	require.Len(t, plans, 3)
	assert.Equal(t, plan.Weekly, plans[0].Key)
	assert.Equal(t, int64(150000), plans[0].PriceKobo)
}

func selectPlanRequest(t *testing.T, app *fiber.App, planName string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{"plan": planName})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/subscriptions/select", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSelectPlanDemoModeActivates(t *testing.T) {
	db, owner, app := setupSubscriptionTest(t, true)

	resp := selectPlanRequest(t, app, "monthly")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sub model.Subscription
	require.NoError(t, db.Where("owner_id = ?", owner.ID).First(&sub).Error)
	assert.Equal(t, string(plan.Monthly), sub.PlanKey)
	assert.Equal(t, "demo", sub.LastPaymentReference)

	var updated model.Owner
	require.NoError(t, db.First(&updated, owner.ID).Error)
	assert.Equal(t, string(plan.Monthly), updated.CurrentPlan)
	assert.Equal(t, model.OwnerStatusActive, updated.Status)
}

func TestSelectPlanRejectsUnknownPlan(t *testing.T) {
	_, _, app := setupSubscriptionTest(t, true)

	resp := selectPlanRequest(t, app, "platinum")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = selectPlanRequest(t, app, "none")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectPlanMissingProviderConfig(t *testing.T) {
	_, _, app := setupSubscriptionTest(t, false)

	// No demo mode and no secret key configured: explicit server error,
	// never a silent activation.
	resp := selectPlanRequest(t, app, "monthly")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGetMySubscription(t *testing.T) {
	_, _, app := setupSubscriptionTest(t, true)

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/my", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	selectPlanRequest(t, app, "weekly")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/subscriptions/my", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
