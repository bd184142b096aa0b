package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
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

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/app/repository"
	"github.com/RUDRA212003/Career-mock/internal/pkg/database"
)

const testWebhookSecret = "whsec_test_secret"

func newControllerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Interview{},
		&models.InterviewResult{},
		&models.CreditOrder{},
		&models.SettlementRecord{},
		&models.PaymentWebhookEvent{},
		&models.CreditAdjustment{},
	))

	database.SetDB(db)
	repository.InitializeFactory(db)
	return db
}

func newWebhookTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newControllerTestDB(t)
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", testWebhookSecret)

	app := fiber.New()
	app.Post("/webhooks/razorpay", HandleRazorpayWebhook)
	return app, db
}

func signWebhookBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, signature, eventID string) (*http.Response, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	if eventID != "" {
		req.Header.Set("X-Razorpay-Event-Id", eventID)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp, parsed
}

func capturedWebhookBody(paymentID, orderID, email string, amount int64) []byte {
	return []byte(fmt.Sprintf(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":%q,"order_id":%q,"amount":%d,"currency":"INR","email":%q,"status":"captured"}}}}`,
		paymentID, orderID, amount, email))
}

func userBalance(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.Credits
}

func TestRazorpayWebhookSettlesPayment(t *testing.T) {
	app, db := newWebhookTestApp(t)

	user := &models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_RECRUITER, Status: models.STATUS_ACTIVE, Credits: 3}
	require.NoError(t, db.Create(user).Error)

	body := capturedWebhookBody("pay_100", "", "buyer@example.com", 24900)
	resp, parsed := postWebhook(t, app, body, signWebhookBody(body), "evt_100")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10), parsed["credits_granted"])
	assert.Equal(t, int64(13), userBalance(t, db, user.ID))

	// Redelivery with the same event id is acknowledged without a second grant
	resp, parsed = postWebhook(t, app, body, signWebhookBody(body), "evt_100")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["duplicate"])
	assert.Equal(t, int64(13), userBalance(t, db, user.ID))
}

func TestRazorpayWebhookSamePaymentDifferentEventID(t *testing.T) {
	app, db := newWebhookTestApp(t)

	user := &models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_RECRUITER, Status: models.STATUS_ACTIVE, Credits: 0}
	require.NoError(t, db.Create(user).Error)

	body := capturedWebhookBody("pay_200", "", "buyer@example.com", 49900)

	resp, parsed := postWebhook(t, app, body, signWebhookBody(body), "evt_200a")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(25), parsed["credits_granted"])

	// Same payment redelivered under a fresh event id: the settlement record
	// on the payment id still blocks a double grant.
	resp, parsed = postWebhook(t, app, body, signWebhookBody(body), "evt_200b")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["duplicate"])
	assert.Equal(t, int64(25), userBalance(t, db, user.ID))
}

func TestRazorpayWebhookInvalidSignature(t *testing.T) {
	app, db := newWebhookTestApp(t)

	user := &models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_RECRUITER, Status: models.STATUS_ACTIVE, Credits: 0}
	require.NoError(t, db.Create(user).Error)

	body := capturedWebhookBody("pay_300", "", "buyer@example.com", 24900)

	resp, parsed := postWebhook(t, app, body, "deadbeef", "evt_300")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_signature", parsed["error"])
	assert.Zero(t, userBalance(t, db, user.ID))

	// The delivery is still on file for reconciliation
	var event models.PaymentWebhookEvent
	require.NoError(t, db.Where("provider_event_id = ?", "evt_300").First(&event).Error)
	assert.False(t, event.SignatureValid)
	assert.NotNil(t, event.ProcessedAt)
	assert.NotEmpty(t, event.ProcessingError)
}

func TestRazorpayWebhookRetryAfterFailedVerificationSettles(t *testing.T) {
	app, db := newWebhookTestApp(t)

	user := &models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_RECRUITER, Status: models.STATUS_ACTIVE, Credits: 0}
	require.NoError(t, db.Create(user).Error)

	body := capturedWebhookBody("pay_320", "", "buyer@example.com", 24900)

	// First delivery arrives with a broken signature (a misconfigured
	// secret, say) and is refused.
	resp, _ := postWebhook(t, app, body, "deadbeef", "evt_320")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, userBalance(t, db, user.ID))

	// The provider retries under the same event id. The stored event row
	// never processed cleanly, so the retry runs verification and
	// settlement in full instead of being swallowed as a duplicate.
	resp, parsed := postWebhook(t, app, body, signWebhookBody(body), "evt_320")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10), parsed["credits_granted"])
	assert.Equal(t, int64(10), userBalance(t, db, user.ID))

	var event models.PaymentWebhookEvent
	require.NoError(t, db.Where("provider_event_id = ?", "evt_320").First(&event).Error)
	assert.True(t, event.SignatureValid)
	assert.Empty(t, event.ProcessingError)

	// A further redelivery after clean processing is a plain duplicate.
	resp, parsed = postWebhook(t, app, body, signWebhookBody(body), "evt_320")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["duplicate"])
	assert.Equal(t, int64(10), userBalance(t, db, user.ID))
}

func TestRazorpayWebhookRetryOfRejectedEventStaysRejected(t *testing.T) {
	app, db := newWebhookTestApp(t)

	user := &models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_RECRUITER, Status: models.STATUS_ACTIVE, Credits: 0}
	require.NoError(t, db.Create(user).Error)

	body := capturedWebhookBody("pay_330", "", "buyer@example.com", 11111)

	resp, parsed := postWebhook(t, app, body, signWebhookBody(body), "evt_330")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["rejected"])

	// Rejections leave a processing error behind, so the retry re-runs
	// settlement and is rejected again rather than reported as a duplicate.
	resp, parsed = postWebhook(t, app, body, signWebhookBody(body), "evt_330")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["rejected"])
	assert.Equal(t, "unrecognized amount", parsed["reason"])
	assert.Zero(t, userBalance(t, db, user.ID))
}

func TestRazorpayWebhookMissingSignature(t *testing.T) {
	app, db := newWebhookTestApp(t)

	body := capturedWebhookBody("pay_310", "", "nobody@example.com", 24900)
	resp, parsed := postWebhook(t, app, body, "", "evt_310")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_signature", parsed["error"])

	var count int64
	require.NoError(t, db.Model(&models.SettlementRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRazorpayWebhookUnrecognizedAmount(t *testing.T) {
	app, db := newWebhookTestApp(t)

	user := &models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_RECRUITER, Status: models.STATUS_ACTIVE, Credits: 0}
	require.NoError(t, db.Create(user).Error)

	body := capturedWebhookBody("pay_400", "", "buyer@example.com", 11111)
	resp, parsed := postWebhook(t, app, body, signWebhookBody(body), "evt_400")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["rejected"])
	assert.Equal(t, "unrecognized amount", parsed["reason"])
	assert.Zero(t, userBalance(t, db, user.ID))
}

func TestRazorpayWebhookUnknownAccount(t *testing.T) {
	app, db := newWebhookTestApp(t)

	body := capturedWebhookBody("pay_500", "order_nobody", "stranger@example.com", 24900)
	resp, parsed := postWebhook(t, app, body, signWebhookBody(body), "evt_500")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["rejected"])
	assert.Equal(t, "unknown account", parsed["reason"])

	var count int64
	require.NoError(t, db.Model(&models.SettlementRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRazorpayWebhookIgnoresNonSettlementEvents(t *testing.T) {
	app, db := newWebhookTestApp(t)

	user := &models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_RECRUITER, Status: models.STATUS_ACTIVE, Credits: 0}
	require.NoError(t, db.Create(user).Error)

	body := []byte(`{"event":"payment.authorized","payload":{"payment":{"entity":{"id":"pay_600","amount":24900,"currency":"INR","email":"buyer@example.com"}}}}`)
	resp, parsed := postWebhook(t, app, body, signWebhookBody(body), "evt_600")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, parsed["ignored"])
	assert.Zero(t, userBalance(t, db, user.ID))
}

func TestRazorpayWebhookInvalidPayload(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	body := []byte(`{"event":"payment.captured","payload":{}}`)
	resp, parsed := postWebhook(t, app, body, signWebhookBody(body), "evt_700")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_payload", parsed["error"])
}
