package repository

import (
	"gorm.io/gorm"

	"panorama-service/internal/models"
)

// RenderedImageRepository defines lookups for pre-rendered composite rows.
type RenderedImageRepository interface {
	Create(img *models.RenderedImage) error
	GetByID(id int64) (*models.RenderedImage, error)
	GetBySignature(sig string, panoramaID *int64) (*models.RenderedImage, error)
	List() ([]models.RenderedImage, error)
	Delete(id int64) error
}

// RenderedImageRepositoryImpl provides RenderedImage access over GORM.
type RenderedImageRepositoryImpl struct {
	db *gorm.DB
}

// NewRenderedImageRepository creates a repository over the given connection.
func NewRenderedImageRepository(db *gorm.DB) *RenderedImageRepositoryImpl {
	return &RenderedImageRepositoryImpl{db: db}
}

// Create inserts a new rendered image row.
func (r *RenderedImageRepositoryImpl) Create(img *models.RenderedImage) error {
	return r.db.Create(img).Error
}

// GetByID does an indexed point lookup by numeric id.
func (r *RenderedImageRepositoryImpl) GetByID(id int64) (*models.RenderedImage, error) {
	var img models.RenderedImage
	err := r.db.First(&img, "id = ?", id).Error
	return &img, err
}

// GetBySignature looks up a row by its unique signature, optionally filtered
// to a single panorama.
func (r *RenderedImageRepositoryImpl) GetBySignature(sig string, panoramaID *int64) (*models.RenderedImage, error) {
	var img models.RenderedImage
	q := r.db.Where("signature = ?", sig)
	if panoramaID != nil {
		q = q.Where("panorama_id = ?", *panoramaID)
	}
	err := q.First(&img).Error
	return &img, err
}

// List retrieves all rendered image rows.
func (r *RenderedImageRepositoryImpl) List() ([]models.RenderedImage, error) {
	var imgs []models.RenderedImage
	err := r.db.Find(&imgs).Error
	return imgs, err
}

// Delete removes a rendered image row by id.
func (r *RenderedImageRepositoryImpl) Delete(id int64) error {
	return r.db.Delete(&models.RenderedImage{}, "id = ?", id).Error
}
