package models

import "time"

// Category is a furniture category (bathtub, sink, floor).
type Category struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	Name      string           `gorm:"not null" json:"name"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	Models    []FurnitureModel `gorm:"foreignKey:CategoryID" json:"models,omitempty"`
}

// FurnitureModel is a concrete product model within a category.
type FurnitureModel struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	CategoryID int64      `gorm:"index;not null" json:"category_id"`
	Name       string     `gorm:"not null" json:"name"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	Materials  []Material `gorm:"foreignKey:ModelID" json:"materials,omitempty"`
}

// TableName keeps the table clear of the reserved word "models".
func (FurnitureModel) TableName() string { return "furniture_models" }

// Material is a surface finish available for a model.
type Material struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ModelID   int64     `gorm:"index;not null" json:"model_id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	Colors    []Color   `gorm:"foreignKey:MaterialID" json:"colors,omitempty"`
}

// Color is a color variant of a material.
type Color struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	MaterialID int64     `gorm:"index;not null" json:"material_id"`
	Name       string    `gorm:"not null" json:"name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
