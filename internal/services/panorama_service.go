package services

import (
	"panorama-service/internal/models"
	"panorama-service/internal/repository"
)

// PanoramaService exposes the panorama catalog reads.
type PanoramaService struct {
	repo repository.PanoramaRepository
}

func NewPanoramaService(repo repository.PanoramaRepository) *PanoramaService {
	return &PanoramaService{repo: repo}
}

// ListPanoramas returns one page of panoramas plus the total count.
func (s *PanoramaService) ListPanoramas(limit, offset int) ([]models.Panorama, int64, error) {
	total, err := s.repo.Count()
	if err != nil {
		return nil, 0, err
	}
	panoramas, err := s.repo.List(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return panoramas, total, nil
}

func (s *PanoramaService) GetPanorama(id int64) (*models.Panorama, error) {
	return s.repo.GetByID(id)
}
