package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/RUDRA212003/Career-mock/app/models"
	"github.com/RUDRA212003/Career-mock/internal/pkg/billing"
	"github.com/RUDRA212003/Career-mock/internal/pkg/database"
	"github.com/RUDRA212003/Career-mock/internal/pkg/env"
	"github.com/RUDRA212003/Career-mock/internal/pkg/usercontext"
)

// HandleListPackages returns the purchasable credit packages.
func HandleListPackages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"packages": billing.Packages()})
}

type createOrderRequest struct {
	PackageID string `json:"package_id"`
}

// HandleCreateOrder registers a provider checkout order for a credit package.
func HandleCreateOrder(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid request body")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	order, err := svc.CreateOrder(ctx, userCtx.UserID, req.PackageID)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPackage) {
			return jsonError(c, fiber.StatusBadRequest, "unknown_package", "unknown credit package")
		}
		if errors.Is(err, billing.ErrProviderUnavailable) {
			return jsonError(c, fiber.StatusBadGateway, "provider_unavailable", "payment provider is unavailable, try again later")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not create order")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"provider":           order.Provider,
		"provider_order_id":  order.ProviderOrderID,
		"package_id":         order.PackageID,
		"amount_minor_units": order.AmountMinorUnits,
		"currency":           order.Currency,
		"status":             order.Status,
		"key_id":             env.GetEnv("RAZORPAY_KEY_ID", ""),
	})
}

// HandleListOrders returns the caller's credit orders.
func HandleListOrders(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	offset, limit := parsePagination(c, 20, 100)

	svc := billing.NewServiceFromDB(database.GetDB())
	orders, err := svc.ListOrders(userCtx.UserID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "could not load orders")
	}

	return c.JSON(fiber.Map{"orders": orders})
}

// HandleRazorpayWebhook processes payment webhooks. The raw body is verified
// against the webhook secret before any of its content is interpreted, and
// every delivery is persisted first so duplicates and bad signatures remain
// visible for reconciliation.
func HandleRazorpayWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Razorpay-Signature"))
	eventID := strings.TrimSpace(c.Get("X-Razorpay-Event-Id"))
	secret := env.GetEnv("RAZORPAY_WEBHOOK_SECRET", "")

	svc := billing.NewServiceFromDB(database.GetDB())
	signatureValid := billing.VerifyRazorpayWebhookSignature(rawBody, signature, secret)

	created, stored, err := svc.RecordWebhookEvent(billing.WebhookEventInput{
		Provider:        models.PaymentProviderRazorpay,
		ProviderEventID: eventID,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		// A redelivery only short-circuits when the stored event already
		// processed cleanly. Deliveries that failed verification or
		// settlement must run the full path again on retry; the settlement
		// record's unique index keeps a double grant impossible.
		if stored.ProcessedAt != nil && stored.ProcessingError == "" {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
		}
		if signatureValid && !stored.SignatureValid {
			_ = svc.MarkWebhookSignatureValid(stored.ID)
		}
	}
	if !signatureValid {
		_ = svc.MarkWebhookProcessed(stored.ID, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	event, err := billing.ParseRazorpayPaymentEvent(rawBody)
	if err != nil {
		_ = svc.MarkWebhookProcessed(stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	event.EventID = stored.ProviderEventID

	if !billing.IsSettlementEvent(event.EventType) {
		_ = svc.MarkWebhookProcessed(stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	outcome, err := svc.Settle(ctx, event)
	if err != nil {
		_ = svc.MarkWebhookProcessed(stored.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "settlement_failed"})
	}

	switch outcome.Status {
	case billing.SettlementRejected:
		_ = svc.MarkWebhookProcessed(stored.ID, errors.New(outcome.Reason))
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "rejected": true, "reason": outcome.Reason})
	case billing.SettlementAlreadyApplied:
		_ = svc.MarkWebhookProcessed(stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	default:
		_ = svc.MarkWebhookProcessed(stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "credits_granted": outcome.CreditsGranted})
	}
}
