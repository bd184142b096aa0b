package billing

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/RUDRA212003/Career-mock/app/models"
)

// razorpayWebhookPayload mirrors the slice of the Razorpay webhook body the
// settlement processor needs.
type razorpayWebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID       string `json:"id"`
				OrderID  string `json:"order_id"`
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
				Email    string `json:"email"`
				Status   string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// IsSettlementEvent reports whether a webhook event type results in a credit
// grant. Everything else (authorized, failed, refunds for now) is recorded
// and acknowledged without touching the ledger.
func IsSettlementEvent(eventType string) bool {
	return strings.EqualFold(strings.TrimSpace(eventType), "payment.captured")
}

// ParseRazorpayPaymentEvent converts a verified payment.captured body into a
// PaymentEvent. Callers must have checked the signature first.
func ParseRazorpayPaymentEvent(raw []byte) (*PaymentEvent, error) {
	var payload razorpayWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	entity := payload.Payload.Payment.Entity
	if entity.ID == "" {
		return nil, errors.New("webhook payload has no payment id")
	}
	if entity.Amount <= 0 {
		return nil, errors.New("webhook payload has no positive amount")
	}

	return &PaymentEvent{
		Provider:          models.PaymentProviderRazorpay,
		EventType:         payload.Event,
		ProviderPaymentID: entity.ID,
		ProviderOrderID:   entity.OrderID,
		AmountMinorUnits:  entity.Amount,
		Currency:          strings.ToUpper(entity.Currency),
		PayerEmail:        strings.ToLower(strings.TrimSpace(entity.Email)),
	}, nil
}
