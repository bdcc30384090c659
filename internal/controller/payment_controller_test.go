package controller

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
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
	"orangerides_backend/pkg/notify"
	"orangerides_backend/pkg/paystack"
	"orangerides_backend/pkg/plan"
	"orangerides_backend/pkg/subscription"
)

const testWebhookSecret = "whsec_test"

func setupPaymentTest(t *testing.T) (*gorm.DB, *fiber.App) {
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

	catalog := plan.NewCatalog()
	sink := notify.NewSink(db)
	activator := subscription.NewActivator(db, catalog, sink)
	gateway := &paystack.Client{WebhookSecret: testWebhookSecret}

	InitPaymentController(catalog, activator, gateway, sink)

	app := fiber.New()
	app.Post("/api/payments/webhook", HandlePaymentWebhook)
	app.Get("/api/payments/verify/:reference", VerifyPayment)

	return db, app
}

func createPaymentTestOwner(t *testing.T, db *gorm.DB) *model.Owner {
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
		CurrentPlan:  string(plan.None),
		Status:       model.OwnerStatusPendingApproval,
	}
	require.NoError(t, db.Create(&owner).Error)
	return &owner
}

func signWebhook(secret string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, signature string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func chargeSuccessPayload(ownerID uint, planKey string, amount int64) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"status":"success","reference":"ref-hook","amount":%d,"metadata":{"user_id":"%d","plan":"%s"}}}`,
		amount, ownerID, planKey,
	))
}

func subscriptionCount(db *gorm.DB) int64 {
	var count int64
	db.Model(&model.Subscription{}).Count(&count)
	return count
}

func TestWebhookActivatesSubscription(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	payload := chargeSuccessPayload(owner.ID, "monthly", 500000)
	resp := postWebhook(t, app, payload, signWebhook(testWebhookSecret, payload))

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sub model.Subscription
	require.NoError(t, db.Where("owner_id = ?", owner.ID).First(&sub).Error)
	assert.Equal(t, "monthly", sub.PlanKey)
	assert.Equal(t, "ref-hook", sub.LastPaymentReference)

	var updated model.Owner
	require.NoError(t, db.First(&updated, owner.ID).Error)
	assert.Equal(t, "monthly", updated.CurrentPlan)
	assert.Equal(t, model.OwnerStatusActive, updated.Status)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	payload := chargeSuccessPayload(owner.ID, "monthly", 500000)
	resp := postWebhook(t, app, payload, signWebhook("whsec_wrong", payload))

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	payload := chargeSuccessPayload(owner.ID, "monthly", 500000)
	signature := signWebhook(testWebhookSecret, payload)

	tampered := chargeSuccessPayload(owner.ID, "yearly", 500000)
	resp := postWebhook(t, app, tampered, signature)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	payload := chargeSuccessPayload(owner.ID, "monthly", 500000)
	resp := postWebhook(t, app, payload, "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestWebhookMissingSecretIsServerError(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	// Misconfigured deployment must fail closed, not skip the check.
	payGateway = &paystack.Client{}
	defer func() { payGateway = &paystack.Client{WebhookSecret: testWebhookSecret} }()

	payload := chargeSuccessPayload(owner.ID, "monthly", 500000)
	resp := postWebhook(t, app, payload, signWebhook(testWebhookSecret, payload))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	db, app := setupPaymentTest(t)
	createPaymentTestOwner(t, db)

	payload := []byte(`{"event":"transfer.success","data":{"reference":"ref-x"}}`)
	resp := postWebhook(t, app, payload, signWebhook(testWebhookSecret, payload))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestWebhookAcknowledgesMissingMetadata(t *testing.T) {
	db, app := setupPaymentTest(t)
	createPaymentTestOwner(t, db)

	payload := []byte(`{"event":"charge.success","data":{"status":"success","reference":"ref-bare","amount":500000,"metadata":{}}}`)
	resp := postWebhook(t, app, payload, signWebhook(testWebhookSecret, payload))

	// A retry would carry the same broken metadata, so acknowledge.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestWebhookAcknowledgesUnknownPlan(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	payload := chargeSuccessPayload(owner.ID, "platinum", 500000)
	resp := postWebhook(t, app, payload, signWebhook(testWebhookSecret, payload))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestWebhookAcknowledgesMalformedJSON(t *testing.T) {
	db, app := setupPaymentTest(t)
	createPaymentTestOwner(t, db)

	payload := []byte(`{"event": "charge.succ`)
	resp := postWebhook(t, app, payload, signWebhook(testWebhookSecret, payload))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestWebhookRejectsAmountMismatch(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	payload := chargeSuccessPayload(owner.ID, "monthly", 100)
	resp := postWebhook(t, app, payload, signWebhook(testWebhookSecret, payload))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))

	var notification model.AdminNotification
	require.NoError(t, db.Where("event_type = ?", model.EventPaymentFailed).First(&notification).Error)
}

func TestWebhookUnknownOwnerIsRetryable(t *testing.T) {
	db, app := setupPaymentTest(t)

	// The owner row may not be committed yet when the webhook lands;
	// 500 makes the provider redeliver later.
	payload := chargeSuccessPayload(9999, "monthly", 500000)
	resp := postWebhook(t, app, payload, signWebhook(testWebhookSecret, payload))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	payload := chargeSuccessPayload(owner.ID, "monthly", 500000)
	signature := signWebhook(testWebhookSecret, payload)

	resp := postWebhook(t, app, payload, signature)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postWebhook(t, app, payload, signature)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, int64(1), subscriptionCount(db))
}

func TestVerifyPaymentActivates(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"reference": "ref-verify",
				"amount": 500000,
				"metadata": {"user_id": "%d", "plan": "monthly"}
			}
		}`, owner.ID)
	}))
	defer provider.Close()

	payGateway = &paystack.Client{
		SecretKey:  "sk_test",
		BaseURL:    provider.URL,
		HTTPClient: provider.Client(),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/payments/verify/ref-verify", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sub model.Subscription
	require.NoError(t, db.Where("owner_id = ?", owner.ID).First(&sub).Error)
	assert.Equal(t, "ref-verify", sub.LastPaymentReference)
}

func TestVerifyPaymentRejectsAmountMismatch(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"reference": "ref-cheap",
				"amount": 100,
				"metadata": {"user_id": "%d", "plan": "monthly"}
			}
		}`, owner.ID)
	}))
	defer provider.Close()

	payGateway = &paystack.Client{
		SecretKey:  "sk_test",
		BaseURL:    provider.URL,
		HTTPClient: provider.Client(),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/payments/verify/ref-cheap", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestVerifyPaymentPendingTransaction(t *testing.T) {
	db, app := setupPaymentTest(t)
	owner := createPaymentTestOwner(t, db)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "pending",
				"reference": "ref-wait",
				"amount": 500000,
				"metadata": {"user_id": "%d", "plan": "monthly"}
			}
		}`, owner.ID)
	}))
	defer provider.Close()

	payGateway = &paystack.Client{
		SecretKey:  "sk_test",
		BaseURL:    provider.URL,
		HTTPClient: provider.Client(),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/payments/verify/ref-wait", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), subscriptionCount(db))
}

func TestVerifyPaymentMissingSecretKey(t *testing.T) {
	_, app := setupPaymentTest(t)

	payGateway = &paystack.Client{}

	req := httptest.NewRequest(http.MethodGet, "/api/payments/verify/ref-x", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
