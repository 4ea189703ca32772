package images

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	"github.com/sijangmap/marketmap-backend/pkg/enums"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
)

type imageRepository interface {
	Create(ctx context.Context, image *models.StoreImage) error
	FindByID(ctx context.Context, id int64) (*models.StoreImage, error)
	ListByStore(ctx context.Context, storeID int64) ([]models.StoreImage, error)
	NextDisplayOrder(ctx context.Context, storeID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

type storeFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Store, error)
}

type fileStore interface {
	Save(header *multipart.FileHeader) (string, error)
	Remove(publicURL string) error
}

// Service manages a store's image gallery.
type Service interface {
	Attach(ctx context.Context, storeID int64, files []*multipart.FileHeader) ([]ImageDTO, error)
	ListByStore(ctx context.Context, storeID int64) ([]ImageDTO, error)
	Remove(ctx context.Context, imageID int64) error
}

type service struct {
	repo   imageRepository
	stores storeFinder
	files  fileStore
	logg   *logger.Logger
}

// NewService builds the image service.
func NewService(repo imageRepository, stores storeFinder, files fileStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("image repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store finder required")
	}
	if files == nil {
		return nil, fmt.Errorf("file store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, stores: stores, files: files, logg: logg}, nil
}

// Attach stores the uploaded files against the store. The first file of
// every batch becomes a MAIN image and the rest are SUB images; display
// order continues after the store's current gallery.
func (s *service) Attach(ctx context.Context, storeID int64, files []*multipart.FileHeader) ([]ImageDTO, error) {
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one image file is required")
	}

	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	order, err := s.repo.NextDisplayOrder(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute display order")
	}

	attached := make([]ImageDTO, 0, len(files))
	for i, header := range files {
		url, err := s.files.Save(header)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store image file")
		}

		imageType := enums.ImageTypeSub
		if i == 0 {
			imageType = enums.ImageTypeMain
		}

		image := &models.StoreImage{
			StoreID:      storeID,
			ImageURL:     url,
			ImageType:    imageType,
			DisplayOrder: order,
			IsActive:     true,
		}
		if err := s.repo.Create(ctx, image); err != nil {
			if removeErr := s.files.Remove(url); removeErr != nil {
				s.logg.Warn(ctx, fmt.Sprintf("orphaned upload %s: %v", url, removeErr))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save image record")
		}

		attached = append(attached, *FromModel(image))
		order++
	}

	s.logg.Info(s.logg.WithStoreID(ctx, storeID), fmt.Sprintf("attached %d images", len(attached)))
	return attached, nil
}

func (s *service) ListByStore(ctx context.Context, storeID int64) ([]ImageDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store images")
	}
	return FromModels(rows), nil
}

// Remove deletes the image record and its stored file. A missing file
// on disk is not an error; the record is authoritative.
func (s *service) Remove(ctx context.Context, imageID int64) error {
	image, err := s.repo.FindByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
	}

	if err := s.repo.Delete(ctx, imageID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image record")
	}
	if err := s.files.Remove(image.ImageURL); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("image file cleanup failed for %s: %v", image.ImageURL, err))
	}
	return nil
}
