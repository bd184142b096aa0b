package billing

// PaymentEvent is the provider-agnostic shape of a verified payment
// notification handed to the settlement processor. It is only ever built
// from a payload whose signature already passed verification.
type PaymentEvent struct {
	Provider          string
	EventID           string
	EventType         string
	ProviderPaymentID string
	ProviderOrderID   string
	AmountMinorUnits  int64
	Currency          string
	PayerEmail        string
}

// SettlementStatus enumerates the outcomes of settling a payment event.
type SettlementStatus string

const (
	SettlementApplied        SettlementStatus = "applied"
	SettlementAlreadyApplied SettlementStatus = "already_applied"
	SettlementRejected       SettlementStatus = "rejected"
)

// SettlementOutcome reports what a Settle call did. Rejected outcomes carry
// the reason logged for manual reconciliation; applied outcomes carry the
// grant that was made.
type SettlementOutcome struct {
	Status         SettlementStatus
	Reason         string
	UserID         uint
	CreditsGranted int64
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
