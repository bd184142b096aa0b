package billing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/internal/pkg/credits"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// sqlite cannot take concurrent writers; a single connection keeps the
	// racing tests deterministic.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CreditOrder{},
		&models.SettlementRecord{},
		&models.PaymentWebhookEvent{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, startingCredits int64) *models.User {
	t.Helper()

	user := &models.User{
		Name:    "Test User",
		Email:   email,
		Role:    models.ROLE_RECRUITER,
		Status:  models.STATUS_ACTIVE,
		Credits: startingCredits,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type stubOrdersClient struct {
	nextID string
	err    error
	calls  int
}

func (s *stubOrdersClient) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*ProviderOrder, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ProviderOrder{
		ID:       s.nextID,
		Amount:   amountMinorUnits,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func capturedEvent(paymentID, orderID, email string, amount int64) *PaymentEvent {
	return &PaymentEvent{
		Provider:          models.PaymentProviderRazorpay,
		EventType:         "payment.captured",
		ProviderPaymentID: paymentID,
		ProviderOrderID:   orderID,
		AmountMinorUnits:  amount,
		Currency:          "INR",
		PayerEmail:        email,
	}
}

func TestCreateOrder(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com", 3)

	stub := &stubOrdersClient{nextID: "order_prov_1"}
	svc := NewService(NewRepository(db), stub)

	order, err := svc.CreateOrder(context.Background(), user.ID, "professional")
	require.NoError(t, err)

	assert.Equal(t, "order_prov_1", order.ProviderOrderID)
	assert.Equal(t, user.ID, order.UserID)
	assert.Equal(t, "professional", order.PackageID)
	assert.Equal(t, int64(49900), order.AmountMinorUnits)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.NotEmpty(t, order.Receipt)
	assert.Equal(t, 1, stub.calls)

	// The local row is queryable by its provider order id
	stored, err := NewRepository(db).GetOrderByProviderOrderID(models.PaymentProviderRazorpay, "order_prov_1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
}

func TestCreateOrderUnknownPackage(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), &stubOrdersClient{nextID: "order_x"})

	_, err := svc.CreateOrder(context.Background(), 1, "mega")
	assert.ErrorIs(t, err, ErrUnknownPackage)
}

func TestCreateOrderProviderFailure(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com", 3)

	stub := &stubOrdersClient{err: fmt.Errorf("%w: connection refused", ErrProviderUnavailable)}
	svc := NewService(NewRepository(db), stub)

	_, err := svc.CreateOrder(context.Background(), user.ID, "starter")
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	// No local order row is left behind
	var count int64
	require.NoError(t, db.Model(&models.CreditOrder{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSettleGrantsCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com", 3)
	svc := NewService(NewRepository(db), &stubOrdersClient{nextID: "order_prov_1"})

	_, err := svc.CreateOrder(context.Background(), user.ID, "professional")
	require.NoError(t, err)

	event := capturedEvent("pay_1", "order_prov_1", "buyer@example.com", 49900)

	outcome, err := svc.Settle(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, SettlementApplied, outcome.Status)
	assert.Equal(t, user.ID, outcome.UserID)
	assert.Equal(t, int64(25), outcome.CreditsGranted)

	balance, err := credits.Balance(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(28), balance)

	// The order is settled now
	order, err := NewRepository(db).GetOrderByProviderOrderID(models.PaymentProviderRazorpay, "order_prov_1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusSettled, order.Status)

	// Redeliveries of the same payment change nothing
	for i := 0; i < 3; i++ {
		outcome, err = svc.Settle(context.Background(), event)
		require.NoError(t, err)
		assert.Equal(t, SettlementAlreadyApplied, outcome.Status)
	}

	balance, err = credits.Balance(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(28), balance)

	var records int64
	require.NoError(t, db.Model(&models.SettlementRecord{}).Count(&records).Error)
	assert.Equal(t, int64(1), records)
}

func TestSettleConcurrentDeliveries(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com", 0)

	svc := NewService(NewRepository(db), &stubOrdersClient{})
	event := capturedEvent("pay_race", "", "buyer@example.com", 24900)

	// At-least-once delivery means the same payment can arrive on several
	// connections at once; the unique settlement record must let exactly
	// one of them grant.
	const deliveries = 8
	type result struct {
		outcome SettlementOutcome
		err     error
	}
	results := make(chan result, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := svc.Settle(context.Background(), event)
			results <- result{outcome, err}
		}()
	}
	wg.Wait()
	close(results)

	var applied, duplicate int
	for res := range results {
		require.NoError(t, res.err)
		switch res.outcome.Status {
		case SettlementApplied:
			applied++
		case SettlementAlreadyApplied:
			duplicate++
		default:
			t.Fatalf("unexpected outcome: %+v", res.outcome)
		}
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, deliveries-1, duplicate)

	balance, err := credits.Balance(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	var records int64
	require.NoError(t, db.Model(&models.SettlementRecord{}).
		Where("provider_payment_id = ?", "pay_race").Count(&records).Error)
	assert.Equal(t, int64(1), records)
}

func TestSettleUnrecognizedAmount(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com", 3)
	svc := NewService(NewRepository(db), &stubOrdersClient{})

	event := capturedEvent("pay_odd", "", "buyer@example.com", 12345)

	// Rejection is stable across retries: no record is written, so the same
	// event keeps getting rejected instead of flipping to already_applied.
	for i := 0; i < 2; i++ {
		outcome, err := svc.Settle(context.Background(), event)
		require.NoError(t, err)
		assert.Equal(t, SettlementRejected, outcome.Status)
		assert.Equal(t, ReasonUnrecognizedAmount, outcome.Reason)
	}

	balance, err := credits.Balance(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), balance)

	var records int64
	require.NoError(t, db.Model(&models.SettlementRecord{}).Count(&records).Error)
	assert.Zero(t, records)
}

func TestSettleUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), &stubOrdersClient{})

	event := capturedEvent("pay_ghost", "order_unseen", "stranger@example.com", 24900)

	outcome, err := svc.Settle(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, SettlementRejected, outcome.Status)
	assert.Equal(t, ReasonUnknownAccount, outcome.Reason)

	var records int64
	require.NoError(t, db.Model(&models.SettlementRecord{}).Count(&records).Error)
	assert.Zero(t, records)
}

func TestSettleOrderLinkageBeatsPayerEmail(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", 0)
	other := createTestUser(t, db, "other@example.com", 0)
	svc := NewService(NewRepository(db), &stubOrdersClient{nextID: "order_prov_2"})

	_, err := svc.CreateOrder(context.Background(), owner.ID, "starter")
	require.NoError(t, err)

	// Payer checked out with a different email than the one on the account.
	// The order linkage decides who gets the credits.
	event := capturedEvent("pay_2", "order_prov_2", "other@example.com", 24900)

	outcome, err := svc.Settle(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, SettlementApplied, outcome.Status)
	assert.Equal(t, owner.ID, outcome.UserID)

	ownerBalance, err := credits.Balance(db, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), ownerBalance)

	otherBalance, err := credits.Balance(db, other.ID)
	require.NoError(t, err)
	assert.Zero(t, otherBalance)
}

func TestSettleEmailFallback(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com", 0)
	svc := NewService(NewRepository(db), &stubOrdersClient{})

	// Payment with no local order, e.g. a checkout started before a deploy
	// that lost the order row. The payer email still resolves the account.
	event := capturedEvent("pay_3", "", "Buyer@Example.com", 89900)
	event.PayerEmail = "buyer@example.com"

	outcome, err := svc.Settle(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, SettlementApplied, outcome.Status)
	assert.Equal(t, user.ID, outcome.UserID)
	assert.Equal(t, int64(50), outcome.CreditsGranted)
}

func TestSweepAbandonedOrders(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "buyer@example.com", 0)
	svc := NewService(NewRepository(db), &stubOrdersClient{nextID: "order_old"})

	_, err := svc.CreateOrder(context.Background(), user.ID, "starter")
	require.NoError(t, err)

	// Backdate the order past the abandonment window
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&models.CreditOrder{}).
		Where("provider_order_id = ?", "order_old").
		UpdateColumn("created_at", old).Error)

	count, err := svc.SweepAbandonedOrders(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	order, err := NewRepository(db).GetOrderByProviderOrderID(models.PaymentProviderRazorpay, "order_old")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAbandoned, order.Status)

	// A late webhook still settles the abandoned order
	outcome, err := svc.Settle(context.Background(), capturedEvent("pay_late", "order_old", "", 24900))
	require.NoError(t, err)
	assert.Equal(t, SettlementApplied, outcome.Status)

	order, err = NewRepository(db).GetOrderByProviderOrderID(models.PaymentProviderRazorpay, "order_old")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusSettled, order.Status)

	// Nothing left to sweep
	count, err = svc.SweepAbandonedOrders(24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordWebhookEventDeduplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), &stubOrdersClient{})

	input := WebhookEventInput{
		Provider:        models.PaymentProviderRazorpay,
		ProviderEventID: "evt_1",
		EventType:       "payment.captured",
		PayloadJSON:     `{"event":"payment.captured"}`,
		SignatureValid:  true,
	}

	created, stored, err := svc.RecordWebhookEvent(input)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, stored)
	firstID := stored.ID

	created, stored, err = svc.RecordWebhookEvent(input)
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, stored)
	assert.Equal(t, firstID, stored.ID)
}

func TestRecordWebhookEventHashFallback(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), &stubOrdersClient{})

	// No provider event id: the payload hash stands in, so redelivering the
	// same body still deduplicates while a different body does not.
	input := WebhookEventInput{
		Provider:    models.PaymentProviderRazorpay,
		EventType:   "payment.captured",
		PayloadJSON: `{"n":1}`,
	}

	created, stored, err := svc.RecordWebhookEvent(input)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, stored.ProviderEventID, "hash_")

	created, _, err = svc.RecordWebhookEvent(input)
	require.NoError(t, err)
	assert.False(t, created)

	input.PayloadJSON = `{"n":2}`
	created, _, err = svc.RecordWebhookEvent(input)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestListSettlementIssues(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), &stubOrdersClient{})

	// A clean, processed event
	_, ok, err := svc.RecordWebhookEvent(WebhookEventInput{
		Provider:        models.PaymentProviderRazorpay,
		ProviderEventID: "evt_ok",
		EventType:       "payment.captured",
		PayloadJSON:     `{}`,
		SignatureValid:  true,
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkWebhookProcessed(ok.ID, nil))

	// An event that failed signature verification
	_, bad, err := svc.RecordWebhookEvent(WebhookEventInput{
		Provider:        models.PaymentProviderRazorpay,
		ProviderEventID: "evt_bad_sig",
		EventType:       "payment.captured",
		PayloadJSON:     `{}`,
		SignatureValid:  false,
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkWebhookProcessed(bad.ID, fmt.Errorf("invalid webhook signature")))

	// An event rejected during settlement
	_, rejected, err := svc.RecordWebhookEvent(WebhookEventInput{
		Provider:        models.PaymentProviderRazorpay,
		ProviderEventID: "evt_rejected",
		EventType:       "payment.captured",
		PayloadJSON:     `{}`,
		SignatureValid:  true,
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkWebhookProcessed(rejected.ID, fmt.Errorf("%s", ReasonUnrecognizedAmount)))

	issues, err := svc.ListSettlementIssues(50)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	ids := []string{issues[0].ProviderEventID, issues[1].ProviderEventID}
	assert.Contains(t, ids, "evt_bad_sig")
	assert.Contains(t, ids, "evt_rejected")
	assert.NotContains(t, ids, "evt_ok")
}
