package billing

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/internal/pkg/credits"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	WithTx(fn func(txRepo Repository) error) error
	CreateOrder(order *models.CreditOrder) error
	GetOrderByProviderOrderID(provider, providerOrderID string) (*models.CreditOrder, error)
	ListOrdersByUser(userID uint, offset, limit int) ([]models.CreditOrder, error)
	MarkOrderSettled(provider, providerOrderID string) error
	MarkOrdersAbandonedBefore(provider string, cutoff time.Time) (int64, error)
	CreateSettlementRecordIfNotExists(record *models.SettlementRecord) (bool, error)
	GrantCredits(userID uint, amount int64) error
	GetUserByEmail(email string) (*models.User, error)
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	MarkWebhookSignatureValid(id uint) error
	ListWebhookEventsWithErrors(limit int) ([]models.PaymentWebhookEvent, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(fn func(txRepo Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) CreateOrder(order *models.CreditOrder) error {
	return r.db.Create(order).Error
}

func (r *gormRepository) GetOrderByProviderOrderID(provider, providerOrderID string) (*models.CreditOrder, error) {
	var order models.CreditOrder
	err := r.db.Where("provider = ? AND provider_order_id = ?", provider, providerOrderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) ListOrdersByUser(userID uint, offset, limit int) ([]models.CreditOrder, error) {
	var orders []models.CreditOrder
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *gormRepository) MarkOrderSettled(provider, providerOrderID string) error {
	return r.db.Model(&models.CreditOrder{}).
		Where("provider = ? AND provider_order_id = ?", provider, providerOrderID).
		Update("status", models.OrderStatusSettled).Error
}

// MarkOrdersAbandonedBefore flips stale "created" orders to "abandoned".
// Settled orders are never touched; a late webhook can still settle an
// abandoned order afterwards.
func (r *gormRepository) MarkOrdersAbandonedBefore(provider string, cutoff time.Time) (int64, error) {
	result := r.db.Model(&models.CreditOrder{}).
		Where("provider = ? AND status = ? AND created_at < ?", provider, models.OrderStatusCreated, cutoff).
		Update("status", models.OrderStatusAbandoned)
	return result.RowsAffected, result.Error
}

// CreateSettlementRecordIfNotExists inserts the settlement audit row. The
// unique index on (provider, provider_payment_id) plus ON CONFLICT DO
// NOTHING makes the insert itself the idempotency check: false means this
// payment was already settled.
func (r *gormRepository) CreateSettlementRecordIfNotExists(record *models.SettlementRecord) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_payment_id"},
		},
		DoNothing: true,
	}).Create(record)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) GrantCredits(userID uint, amount int64) error {
	return credits.Grant(r.db, userID, amount)
}

func (r *gormRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// MarkWebhookSignatureValid upgrades the stored flag when a redelivery of an
// event verifies after an earlier attempt did not.
func (r *gormRepository) MarkWebhookSignatureValid(id uint) error {
	return r.db.Model(&models.PaymentWebhookEvent{}).
		Where("id = ?", id).
		Update("signature_valid", true).Error
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

// ListWebhookEventsWithErrors returns events that verified or settled with a
// problem, newest first, for the admin reconciliation view.
func (r *gormRepository) ListWebhookEventsWithErrors(limit int) ([]models.PaymentWebhookEvent, error) {
	var events []models.PaymentWebhookEvent
	err := r.db.Where("processing_error <> '' OR signature_valid = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
