package models

// CardSubscriberModel records an email that wants notifications for new
// entries on one card. At most one row per (card, email) pair.
type CardSubscriberModel struct {
	Base
	CardID       string `json:"card_id"       gorm:"not null;uniqueIndex:idx_card_email"`
	Email        string `json:"email"         gorm:"not null;uniqueIndex:idx_card_email"`
	SubscribedAt int64  `json:"subscribed_at" gorm:"not null"`
}

func (CardSubscriberModel) TableName() string { return "card_subscribers" }
