package models

// GalleryImageModel catalogs an image stored in the object store.
// StorageKey is the S3 object key; the row carries no URL because URLs are
// resolved (presigned) at read time.
type GalleryImageModel struct {
	Base
	StorageKey  string `json:"storage_key" gorm:"uniqueIndex;not null"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Order       *int   `json:"order,omitempty"       gorm:"column:sort_order"`
	UploadedAt  int64  `json:"uploaded_at"           gorm:"not null;index"`
}

func (GalleryImageModel) TableName() string { return "gallery_images" }
