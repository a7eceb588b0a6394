package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Topics []SubscriptionTopic `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// SubscriptionTopic maps a subscription to one event topic it wants pushed
// (e.g. "shift-closed", "malfunction").
type SubscriptionTopic struct {
	Endpoint string `gorm:"primaryKey;size:512"`
	Topic    string `gorm:"primaryKey;size:64"`
}
