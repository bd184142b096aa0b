package models

import "time"

// Payment provider constants used across billing-related models.
const (
	PaymentProviderRazorpay = "razorpay"
)

// Credit order lifecycle. Orders start as "created" when the provider order
// is registered, become "settled" when the matching payment webhook is
// applied, or "abandoned" when no webhook arrives within the configured
// window. A late webhook for an abandoned order still settles it.
const (
	OrderStatusCreated   = "created"
	OrderStatusSettled   = "settled"
	OrderStatusAbandoned = "abandoned"
)

// CreditOrder is the local record of a provider checkout order for a credit
// package. The provider-assigned order id links the later payment webhook
// back to the purchasing user.
type CreditOrder struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Provider         string    `gorm:"type:varchar(20);not null;index:ux_credit_orders_provider_order,unique,priority:1" json:"provider"`
	ProviderOrderID  string    `gorm:"type:varchar(191);not null;index:ux_credit_orders_provider_order,unique,priority:2" json:"provider_order_id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	PackageID        string    `gorm:"type:varchar(50);not null" json:"package_id"`
	AmountMinorUnits int64     `gorm:"not null" json:"amount_minor_units"`
	Currency         string    `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	Status           string    `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	Receipt          string    `gorm:"type:varchar(64);default:''" json:"receipt"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
