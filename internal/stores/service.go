package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/config"
	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	"github.com/sijangmap/marketmap-backend/pkg/enums"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
	"github.com/sijangmap/marketmap-backend/pkg/metrics"
)

const (
	maxNameLen = 100
	maxCodeLen = 50
	minZone    = 1
	maxZone    = 5
)

type storeRepository interface {
	Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error)
	FindByID(ctx context.Context, id int64) (*models.Store, error)
	FindActiveByCode(ctx context.Context, code string) (*models.Store, error)
	CodeTakenByOther(ctx context.Context, code string, excludeID int64) (bool, error)
	ListActive(ctx context.Context) ([]models.Store, error)
	ListByZone(ctx context.Context, zone int) ([]models.Store, error)
	FindWithinRadius(ctx context.Context, x, y, radius int) ([]models.Store, error)
	FindNearest(ctx context.Context, x, y int) (*models.Store, error)
	SearchKeyword(ctx context.Context, keyword string) ([]models.Store, error)
	SearchName(ctx context.Context, name string) ([]models.Store, error)
	SearchPhone(ctx context.Context, phone string) ([]models.Store, error)
	CountActive(ctx context.Context) (int64, error)
	CountByZone(ctx context.Context) (map[int]int64, error)
	Update(ctx context.Context, store *models.Store) error
	SoftDelete(ctx context.Context, id int64) error
	Purge(ctx context.Context, id int64) ([]string, error)
}

// fileRemover cleans up uploaded image files once their records are gone.
type fileRemover interface {
	Remove(publicURL string) error
}

type searchRecorder interface {
	Record(ctx context.Context, keyword *string, searchType enums.SearchType, resultCount int) error
	CountToday(ctx context.Context) (int64, error)
}

// Service exposes the store locator and catalog mutation operations.
type Service interface {
	ListAll(ctx context.Context) ([]StoreDTO, error)
	ListByZone(ctx context.Context, zone int) ([]StoreDTO, error)
	GetByID(ctx context.Context, id int64) (*StoreDTO, error)
	GetByCode(ctx context.Context, code string) (*StoreDTO, error)
	SearchKeyword(ctx context.Context, keyword string) ([]StoreDTO, error)
	SearchName(ctx context.Context, name string) ([]StoreDTO, error)
	SearchPhone(ctx context.Context, phone string) ([]StoreDTO, error)
	SearchLocation(ctx context.Context, x, y, radius int) ([]StoreDTO, error)
	Nearest(ctx context.Context, x, y int) (*StoreDTO, error)
	Stats(ctx context.Context) (*StatsDTO, error)
	Create(ctx context.Context, dto CreateStoreDTO) (*StoreDTO, error)
	Update(ctx context.Context, id int64, input UpdateStoreInput) (*StoreDTO, error)
	SoftDelete(ctx context.Context, id int64) error
	Purge(ctx context.Context, id int64) error
	ExportXLSX(ctx context.Context) ([]byte, error)
}

type service struct {
	repo      storeRepository
	logs      searchRecorder
	files     fileRemover
	logg      *logger.Logger
	searchCfg config.SearchConfig
	metrics   *metrics.SearchMetrics
}

// NewService builds the store service. The files and metrics arguments
// may be nil.
func NewService(repo storeRepository, logs searchRecorder, files fileRemover, logg *logger.Logger, searchCfg config.SearchConfig, m *metrics.SearchMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if logs == nil {
		return nil, fmt.Errorf("search recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		logs:      logs,
		files:     files,
		logg:      logg,
		searchCfg: searchCfg,
		metrics:   m,
	}, nil
}

func (s *service) ListAll(ctx context.Context) ([]StoreDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	return FromModels(rows), nil
}

// ListByZone is permissive on reads: a zone outside the valid range
// yields an empty listing, not a validation error.
func (s *service) ListByZone(ctx context.Context, zone int) ([]StoreDTO, error) {
	if zone < minZone || zone > maxZone {
		return []StoreDTO{}, nil
	}
	rows, err := s.repo.ListByZone(ctx, zone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores by zone")
	}
	return FromModels(rows), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*StoreDTO, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store code is required")
	}
	store, err := s.repo.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store by code")
	}
	return FromModel(store), nil
}

// SearchKeyword is the only search path that writes a search-log entry.
// A blank keyword degrades to the full directory listing and skips the log.
func (s *service) SearchKeyword(ctx context.Context, keyword string) ([]StoreDTO, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.ListAll(ctx)
	}

	s.metrics.RecordSearch(enums.SearchTypeKeyword.String())

	started := time.Now()
	rows, err := s.repo.SearchKeyword(ctx, keyword)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search stores")
	}
	s.metrics.ObserveQuery("search_keyword", time.Since(started))

	s.recordSearch(ctx, &keyword, enums.SearchTypeKeyword, len(rows))
	return FromModels(rows), nil
}

func (s *service) SearchName(ctx context.Context, name string) ([]StoreDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.ListAll(ctx)
	}
	s.metrics.RecordSearch(enums.SearchTypeName.String())
	rows, err := s.repo.SearchName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search stores by name")
	}
	return FromModels(rows), nil
}

func (s *service) SearchPhone(ctx context.Context, phone string) ([]StoreDTO, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return []StoreDTO{}, nil
	}
	s.metrics.RecordSearch(enums.SearchTypePhone.String())
	rows, err := s.repo.SearchPhone(ctx, phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search stores by phone")
	}
	return FromModels(rows), nil
}

// SearchLocation returns active stores within a square window around
// (x, y), nearest first. The window is a superset of the circular
// radius; callers render distance themselves if they need it.
func (s *service) SearchLocation(ctx context.Context, x, y, radius int) ([]StoreDTO, error) {
	if x <= 0 || y <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates must be positive")
	}
	if radius <= 0 {
		radius = s.searchCfg.DefaultRadius
	}

	s.metrics.RecordSearch(enums.SearchTypeLocation.String())

	started := time.Now()
	rows, err := s.repo.FindWithinRadius(ctx, x, y, radius)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search stores by location")
	}
	s.metrics.ObserveQuery("within_radius", time.Since(started))

	return FromModels(rows), nil
}

func (s *service) Nearest(ctx context.Context, x, y int) (*StoreDTO, error) {
	if x <= 0 || y <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates must be positive")
	}

	started := time.Now()
	store, err := s.repo.FindNearest(ctx, x, y)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active stores")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find nearest store")
	}
	s.metrics.ObserveQuery("nearest", time.Since(started))

	return FromModel(store), nil
}

func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	total, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stores")
	}
	byZone, err := s.repo.CountByZone(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stores by zone")
	}
	today, err := s.logs.CountToday(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count today's searches")
	}
	return &StatsDTO{
		TotalActive:   total,
		CountByZone:   byZone,
		SearchesToday: today,
	}, nil
}

func (s *service) Create(ctx context.Context, dto CreateStoreDTO) (*StoreDTO, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	normalizeCode(&dto.Code)

	if err := validatePayload(dto.Name, dto.X, dto.Y, dto.ZoneNumber, dto.Code); err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, dto.Code, 0); err != nil {
		return nil, err
	}

	store, err := s.repo.Create(ctx, dto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	s.logg.Info(s.logg.WithStoreID(ctx, store.StoreID), "store created")
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	applyUpdate(store, input)
	store.StoreName = strings.TrimSpace(store.StoreName)
	normalizeCode(&store.StoreCode)

	if err := validatePayload(store.StoreName, store.XCoordinate, store.YCoordinate, store.ZoneNumber, store.StoreCode); err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, store.StoreCode, store.StoreID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) SoftDelete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete store")
	}
	s.logg.Info(s.logg.WithStoreID(ctx, id), "store soft-deleted")
	return nil
}

func (s *service) Purge(ctx context.Context, id int64) error {
	imageURLs, err := s.repo.Purge(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge store")
	}
	if s.files != nil {
		for _, url := range imageURLs {
			if err := s.files.Remove(url); err != nil {
				s.logg.Warn(ctx, fmt.Sprintf("image file cleanup failed for %s: %v", url, err))
			}
		}
	}
	s.logg.Warn(s.logg.WithStoreID(ctx, id), "store purged")
	return nil
}

// recordSearch appends a search-log entry without letting a logging
// failure reach the search caller. The write runs on a detached context
// so a cancelled request cannot abort it mid-flight.
func (s *service) recordSearch(ctx context.Context, keyword *string, searchType enums.SearchType, resultCount int) {
	timeout := s.searchCfg.RecordTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.logs.Record(recordCtx, keyword, searchType, resultCount); err != nil {
		s.metrics.RecordLogFailure()
		s.logg.Warn(ctx, fmt.Sprintf("search log write dropped: %v", err))
	}
}

func (s *service) ensureCodeFree(ctx context.Context, code *string, excludeID int64) error {
	if code == nil {
		return nil
	}
	taken, err := s.repo.CodeTakenByOther(ctx, *code, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store code")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, "store code already in use")
	}
	return nil
}

func validatePayload(name string, x, y int, zone *int, code *string) error {
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	if len([]rune(name)) > maxNameLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "store name exceeds 100 characters")
	}
	if x <= 0 || y <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coordinates must be positive")
	}
	if zone != nil && (*zone < minZone || *zone > maxZone) {
		return pkgerrors.New(pkgerrors.CodeValidation, "zone number must be between 1 and 5")
	}
	if code != nil && len([]rune(*code)) > maxCodeLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "store code exceeds 50 characters")
	}
	return nil
}

// normalizeCode trims the code and folds an empty string to nil so the
// partial unique index never sees blank codes.
func normalizeCode(code **string) {
	if *code == nil {
		return
	}
	trimmed := strings.TrimSpace(**code)
	if trimmed == "" {
		*code = nil
		return
	}
	*code = &trimmed
}

func applyUpdate(store *models.Store, input UpdateStoreInput) {
	if input.Name != nil {
		store.StoreName = *input.Name
	}
	if input.Code != nil {
		store.StoreCode = input.Code
	}
	if input.ZoneNumber != nil {
		store.ZoneNumber = input.ZoneNumber
	}
	if input.PhoneNumber != nil {
		store.PhoneNumber = input.PhoneNumber
	}
	if input.Address != nil {
		store.Address = input.Address
	}
	if input.DetailAddress != nil {
		store.DetailAddress = input.DetailAddress
	}
	if input.X != nil {
		store.XCoordinate = *input.X
	}
	if input.Y != nil {
		store.YCoordinate = *input.Y
	}
	if input.MarkerRadius != nil {
		store.MarkerRadius = *input.MarkerRadius
	}
	if input.BusinessHours != nil {
		store.BusinessHours = input.BusinessHours
	}
	if input.Description != nil {
		store.Description = input.Description
	}
}
