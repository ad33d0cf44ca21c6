package models

// CardModel is a physical card handed out at events. CustomID is the
// human-chosen identifier printed on the card and used in URLs; EditKey is
// the secret token embedded in the card's QR link that unlocks the entry
// form. EditKey never changes after creation.
type CardModel struct {
	Base
	CustomID     string  `json:"custom_id"      gorm:"uniqueIndex;not null"`
	Task         string  `json:"task"           gorm:"type:text;not null"`
	EditKey      string  `json:"-"              gorm:"not null"`
	FrontImageID *string `json:"front_image_id"`
	BackImageID  *string `json:"back_image_id"`
}

func (CardModel) TableName() string { return "cards" }
