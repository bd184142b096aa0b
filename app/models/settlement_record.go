package models

import "time"

// SettlementRecord is the audit row written exactly once per real-world
// payment. The unique index on (provider, provider_payment_id) is the
// idempotency mechanism for settlement: a second delivery of the same
// payment event fails the insert and is treated as already applied.
type SettlementRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Provider          string    `gorm:"type:varchar(20);not null;index:ux_settlement_records_provider_payment,unique,priority:1" json:"provider"`
	ProviderPaymentID string    `gorm:"type:varchar(191);not null;index:ux_settlement_records_provider_payment,unique,priority:2" json:"provider_payment_id"`
	ProviderOrderID   string    `gorm:"type:varchar(191);default:'';index" json:"provider_order_id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	PackageID         string    `gorm:"type:varchar(50);not null" json:"package_id"`
	CreditsGranted    int64     `gorm:"not null" json:"credits_granted"`
	AmountMinorUnits  int64     `gorm:"not null" json:"amount_minor_units"`
	ProcessedAt       time.Time `gorm:"autoCreateTime" json:"processed_at"`
}
