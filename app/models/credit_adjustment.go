package models

import "time"

// CreditAdjustment is the audit trail for manual balance changes made from
// the admin console, typically to reconcile a payment whose settlement was
// rejected (unrecognized amount, unresolvable account).
type CreditAdjustment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	AdminID    uint      `gorm:"not null;index" json:"admin_id"`
	Delta      int64     `gorm:"not null" json:"delta"`
	Reason     string    `gorm:"type:varchar(500);not null" json:"reason"`
	WebhookRef string    `gorm:"type:varchar(191);default:''" json:"webhook_ref"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
