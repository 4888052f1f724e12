package repository

import (
	"gorm.io/gorm"

	"panorama-service/internal/models"
)

// PanoramaRepository defines read access to the panorama catalog.
type PanoramaRepository interface {
	List(limit, offset int) ([]models.Panorama, error)
	Count() (int64, error)
	GetByID(id int64) (*models.Panorama, error)
}

// PanoramaRepositoryImpl provides Panorama access over GORM.
type PanoramaRepositoryImpl struct {
	db *gorm.DB
}

// NewPanoramaRepository creates a repository over the given connection.
func NewPanoramaRepository(db *gorm.DB) *PanoramaRepositoryImpl {
	return &PanoramaRepositoryImpl{db: db}
}

// List returns panoramas in id order. A limit of 0 means no limit.
func (r *PanoramaRepositoryImpl) List(limit, offset int) ([]models.Panorama, error) {
	var panoramas []models.Panorama
	q := r.db.Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&panoramas).Error
	return panoramas, err
}

// Count returns the total panorama count, independent of paging.
func (r *PanoramaRepositoryImpl) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.Panorama{}).Count(&n).Error
	return n, err
}

// GetByID retrieves one panorama.
func (r *PanoramaRepositoryImpl) GetByID(id int64) (*models.Panorama, error) {
	var p models.Panorama
	err := r.db.First(&p, "id = ?", id).Error
	return &p, err
}
