package banners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/pkg/db/models"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
)

// Service serves homepage banners and their admin CRUD.
type Service interface {
	Active(ctx context.Context) ([]BannerDTO, error)
	List(ctx context.Context) ([]BannerDTO, error)
	Create(ctx context.Context, req CreateBannerRequest) (*BannerDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateBannerRequest) (*BannerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banner repository is required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Active(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.Active(ctx, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list active banners")
	}
	return toDTOs(rows), nil
}

func (s *service) List(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list banners")
	}
	return toDTOs(rows), nil
}

func (s *service) Create(ctx context.Context, req CreateBannerRequest) (*BannerDTO, error) {
	banner := &models.Banner{
		Title:    strings.TrimSpace(req.Title),
		ImageURL: strings.TrimSpace(req.ImageURL),
		LinkURL:  req.LinkURL,
		Position: req.Position,
		IsActive: true,
		StartAt:  req.StartAt,
		EndAt:    req.EndAt,
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}
	if err := validate(banner); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert banner")
	}
	dto := FromModel(*banner)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateBannerRequest) (*BannerDTO, error) {
	banner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if req.Title != nil {
		banner.Title = strings.TrimSpace(*req.Title)
	}
	if req.ImageURL != nil {
		banner.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.LinkURL != nil {
		banner.LinkURL = req.LinkURL
	}
	if req.Position != nil {
		banner.Position = *req.Position
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}
	if req.ClearWindow {
		banner.StartAt, banner.EndAt = nil, nil
	}
	if req.StartAt != nil {
		banner.StartAt = req.StartAt
	}
	if req.EndAt != nil {
		banner.EndAt = req.EndAt
	}
	if err := validate(banner); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, banner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update banner")
	}
	dto := FromModel(*banner)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete banner")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
	}
	return nil
}

func validate(b *models.Banner) error {
	if b.Title == "" || b.ImageURL == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title and image_url are required")
	}
	if b.Position < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "position must not be negative")
	}
	if b.StartAt != nil && b.EndAt != nil && b.EndAt.Before(*b.StartAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_at must not be before start_at")
	}
	return nil
}

func toDTOs(rows []models.Banner) []BannerDTO {
	out := make([]BannerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load banner")
}
