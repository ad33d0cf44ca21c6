package models

// MessageModel is a global chat message. Append-only; displayed oldest first.
type MessageModel struct {
	Base
	Username  string `json:"username"  gorm:"not null"`
	Content   string `json:"content"   gorm:"type:text;not null"`
	Timestamp int64  `json:"timestamp" gorm:"not null;index"`
}

func (MessageModel) TableName() string { return "messages" }
