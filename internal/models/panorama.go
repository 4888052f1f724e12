package models

import "time"

// Panorama is one 360° room view the configurator can show.
type Panorama struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	StorageKey string    `gorm:"not null" json:"storage_key"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Asset ties a (panorama, kind, category?, model?, material?, color?) tuple to
// a storage key. The composite unique index enforces one asset per tuple.
type Asset struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	PanoramaID int64     `gorm:"uniqueIndex:idx_asset_variant;not null" json:"panorama_id"`
	Kind       string    `gorm:"uniqueIndex:idx_asset_variant;size:32;not null" json:"kind"`
	CategoryID *int64    `gorm:"uniqueIndex:idx_asset_variant" json:"category_id"`
	ModelID    *int64    `gorm:"uniqueIndex:idx_asset_variant" json:"model_id"`
	MaterialID *int64    `gorm:"uniqueIndex:idx_asset_variant" json:"material_id"`
	ColorID    *int64    `gorm:"uniqueIndex:idx_asset_variant" json:"color_id"`
	StorageKey string    `gorm:"not null" json:"storage_key"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
