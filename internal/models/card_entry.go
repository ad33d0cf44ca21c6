package models

// GPSPosition is an embedded coordinate pair captured at submission time.
type GPSPosition struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CardEntryModel is a single visitor submission attached to a card.
// Date is the visitor-supplied event timestamp (unix ms), distinct from
// CreatedAt. Entries are immutable once created.
type CardEntryModel struct {
	Base
	CardID             string       `json:"card_id"              gorm:"not null;index"`
	Username           string       `json:"username"             gorm:"not null;index"`
	Date               int64        `json:"date"                 gorm:"not null;index"`
	GPSPosition        *GPSPosition `json:"gps_position,omitempty" gorm:"serializer:json"`
	Location           string       `json:"location,omitempty"`
	City               string       `json:"city,omitempty"`
	Comment            string       `json:"comment,omitempty"    gorm:"type:text"`
	Instagram          string       `json:"instagram,omitempty"`
	InterestedInBuying *bool        `json:"interested_in_buying,omitempty"`
}

func (CardEntryModel) TableName() string { return "card_entries" }
