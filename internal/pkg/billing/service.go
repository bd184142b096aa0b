package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/RUDRA212003/Career-mock/app/models"
)

// Rejection reasons recorded on webhook events that could not be settled.
const (
	ReasonUnrecognizedAmount = "unrecognized amount"
	ReasonUnknownAccount     = "unknown account"
)

// Service implements credit order issuing and payment settlement on top of
// the billing repository and the provider orders client.
type Service struct {
	repo   Repository
	orders OrdersClient
}

// NewService wires a billing service from its dependencies.
func NewService(repo Repository, orders OrdersClient) *Service {
	return &Service{repo: repo, orders: orders}
}

// NewServiceFromDB builds the default production service: GORM repository
// plus the Razorpay client configured from the environment.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewRazorpayClientFromEnv())
}

// CreateOrder registers a provider order for the given catalog package and
// records it locally, linked to the purchasing user. The local row is what
// later lets the webhook resolve the payer even when the provider reports a
// different email address.
func (s *Service) CreateOrder(ctx context.Context, userID uint, packageID string) (*models.CreditOrder, error) {
	pkg, err := PackageByID(packageID)
	if err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("order_u%d_%d", userID, time.Now().UnixNano())
	providerOrder, err := s.orders.CreateOrder(ctx, pkg.PriceMinorUnits, pkg.Currency, receipt)
	if err != nil {
		return nil, err
	}

	order := &models.CreditOrder{
		Provider:         models.PaymentProviderRazorpay,
		ProviderOrderID:  providerOrder.ID,
		UserID:           userID,
		PackageID:        pkg.ID,
		AmountMinorUnits: pkg.PriceMinorUnits,
		Currency:         pkg.Currency,
		Status:           models.OrderStatusCreated,
		Receipt:          receipt,
	}
	if err := s.repo.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("error storing credit order: %w", err)
	}

	log.Printf("[Billing] Created order %s for user %d (package %s, %d %s)",
		order.ProviderOrderID, userID, pkg.ID, pkg.PriceMinorUnits, pkg.Currency)
	return order, nil
}

// RecordWebhookEvent persists a raw webhook delivery before any processing.
// Events without a provider event id get a payload-hash id so redeliveries of
// the same body still deduplicate. Returns whether this delivery created the
// row plus the stored row itself.
func (s *Service) RecordWebhookEvent(input WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	eventID := input.ProviderEventID
	if eventID == "" {
		sum := sha256.Sum256([]byte(input.PayloadJSON))
		eventID = "hash_" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        input.Provider,
		ProviderEventID: eventID,
		EventType:       input.EventType,
		PayloadJSON:     input.PayloadJSON,
		SignatureValid:  input.SignatureValid,
	}
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(event)
	if err != nil {
		return false, nil, fmt.Errorf("error storing webhook event: %w", err)
	}
	return created, stored, nil
}

// MarkWebhookSignatureValid records that a later delivery of the stored
// event carried a valid signature.
func (s *Service) MarkWebhookSignatureValid(eventID uint) error {
	return s.repo.MarkWebhookSignatureValid(eventID)
}

// MarkWebhookProcessed stamps the processing result on a stored event.
func (s *Service) MarkWebhookProcessed(eventID uint, procErr error) error {
	msg := ""
	if procErr != nil {
		msg = procErr.Error()
	}
	if err := s.repo.MarkWebhookProcessed(eventID, msg); err != nil {
		log.Printf("[Billing] Failed to mark webhook event %d processed: %v", eventID, err)
		return err
	}
	return nil
}

// Settle applies a verified payment event to the ledger. The whole operation
// runs in one transaction: the settlement record insert doubles as the
// idempotency check, so concurrent deliveries of the same payment race on the
// unique index and exactly one of them grants credits.
//
// Rejected events write no settlement record, which keeps retries of the same
// broken event rejected rather than silently absorbed.
func (s *Service) Settle(ctx context.Context, event *PaymentEvent) (SettlementOutcome, error) {
	pkg, err := PackageForAmount(event.AmountMinorUnits, event.Currency)
	if err != nil {
		if errors.Is(err, ErrUnrecognizedAmount) {
			log.Printf("[Billing] Rejected payment %s: no package priced at %d %s",
				event.ProviderPaymentID, event.AmountMinorUnits, event.Currency)
			return SettlementOutcome{Status: SettlementRejected, Reason: ReasonUnrecognizedAmount}, nil
		}
		return SettlementOutcome{}, err
	}

	var outcome SettlementOutcome
	txErr := s.repo.WithTx(func(tx Repository) error {
		userID, order, err := s.resolveAccount(tx, event)
		if err != nil {
			if errors.Is(err, ErrUnknownAccount) {
				log.Printf("[Billing] Rejected payment %s: no account for order %q / email %q",
					event.ProviderPaymentID, event.ProviderOrderID, event.PayerEmail)
				outcome = SettlementOutcome{Status: SettlementRejected, Reason: ReasonUnknownAccount}
				return nil
			}
			return err
		}

		record := &models.SettlementRecord{
			Provider:          event.Provider,
			ProviderPaymentID: event.ProviderPaymentID,
			ProviderOrderID:   event.ProviderOrderID,
			UserID:            userID,
			PackageID:         pkg.ID,
			CreditsGranted:    pkg.Credits,
			AmountMinorUnits:  event.AmountMinorUnits,
		}
		created, err := tx.CreateSettlementRecordIfNotExists(record)
		if err != nil {
			return fmt.Errorf("error storing settlement record: %w", err)
		}
		if !created {
			outcome = SettlementOutcome{Status: SettlementAlreadyApplied, UserID: userID}
			return nil
		}

		if err := tx.GrantCredits(userID, pkg.Credits); err != nil {
			return fmt.Errorf("error granting credits: %w", err)
		}
		if order != nil {
			if err := tx.MarkOrderSettled(order.Provider, order.ProviderOrderID); err != nil {
				return fmt.Errorf("error marking order settled: %w", err)
			}
		}

		outcome = SettlementOutcome{
			Status:         SettlementApplied,
			UserID:         userID,
			CreditsGranted: pkg.Credits,
		}
		return nil
	})
	if txErr != nil {
		return SettlementOutcome{}, txErr
	}

	switch outcome.Status {
	case SettlementApplied:
		log.Printf("[Billing] Settled payment %s: +%d credits for user %d (package %s)",
			event.ProviderPaymentID, outcome.CreditsGranted, outcome.UserID, pkg.ID)
	case SettlementAlreadyApplied:
		log.Printf("[Billing] Duplicate delivery of payment %s ignored", event.ProviderPaymentID)
	}
	return outcome, nil
}

// resolveAccount maps a payment event to a local user. The order linkage is
// authoritative when present: the payer may check out with a different email
// than the one they registered with. Email lookup is only a fallback for
// payments with no local order.
func (s *Service) resolveAccount(tx Repository, event *PaymentEvent) (uint, *models.CreditOrder, error) {
	if event.ProviderOrderID != "" {
		order, err := tx.GetOrderByProviderOrderID(event.Provider, event.ProviderOrderID)
		if err == nil {
			return order.UserID, order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, fmt.Errorf("error loading credit order: %w", err)
		}
	}

	if event.PayerEmail != "" {
		user, err := tx.GetUserByEmail(event.PayerEmail)
		if err == nil {
			return user.ID, nil, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, fmt.Errorf("error loading user by email: %w", err)
		}
	}

	return 0, nil, ErrUnknownAccount
}

// SweepAbandonedOrders marks stale unpaid orders as abandoned. Runs from the
// background job queue.
func (s *Service) SweepAbandonedOrders(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	count, err := s.repo.MarkOrdersAbandonedBefore(models.PaymentProviderRazorpay, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error sweeping abandoned orders: %w", err)
	}
	if count > 0 {
		log.Printf("[Billing] Marked %d orders abandoned (older than %s)", count, maxAge)
	}
	return count, nil
}

// ListSettlementIssues returns recent webhook events with verification or
// settlement problems for the admin reconciliation view.
func (s *Service) ListSettlementIssues(limit int) ([]models.PaymentWebhookEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListWebhookEventsWithErrors(limit)
}

// ListOrders returns a user's credit orders, newest first.
func (s *Service) ListOrders(userID uint, offset, limit int) ([]models.CreditOrder, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListOrdersByUser(userID, offset, limit)
}
