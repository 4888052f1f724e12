package models

import "time"

// RenderedImage is a pre-rendered composite registered in the database. The
// signature is the canonical lookup key; the storage key points at the bytes
// in the object store.
type RenderedImage struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Signature   string    `gorm:"uniqueIndex;not null" json:"signature"`
	PanoramaID  int64     `gorm:"index;not null" json:"panorama_id"`
	BaseAssetID int64     `gorm:"not null" json:"base_asset_id"`
	StorageKey  string    `gorm:"not null" json:"storage_key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
