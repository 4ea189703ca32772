package stores

import (
	"context"
	"errors"
	"io"
	"testing"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/config"
	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	"github.com/sijangmap/marketmap-backend/pkg/enums"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
)

type stubStoreRepo struct {
	store      *models.Store
	listed     []models.Store
	codeTaken  bool
	purgedURLs []string
	err        error

	radiusSeen   int
	excludeSeen  int64
	listCalls    int
	searchCalls  int
	createdDTO   *CreateStoreDTO
	updatedStore *models.Store
}

func (r *stubStoreRepo) Create(_ context.Context, dto CreateStoreDTO) (*models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.createdDTO = &dto
	store := dto.ToModel()
	store.StoreID = 1
	return store, nil
}

func (r *stubStoreRepo) FindByID(_ context.Context, id int64) (*models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.store == nil || r.store.StoreID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *r.store
	return &cpy, nil
}

func (r *stubStoreRepo) FindActiveByCode(_ context.Context, code string) (*models.Store, error) {
	if r.store == nil || r.store.StoreCode == nil || *r.store.StoreCode != code {
		return nil, gorm.ErrRecordNotFound
	}
	return r.store, nil
}

func (r *stubStoreRepo) CodeTakenByOther(_ context.Context, _ string, excludeID int64) (bool, error) {
	r.excludeSeen = excludeID
	return r.codeTaken, nil
}

func (r *stubStoreRepo) ListActive(context.Context) ([]models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.listCalls++
	return r.listed, nil
}

func (r *stubStoreRepo) ListByZone(context.Context, int) ([]models.Store, error) {
	r.listCalls++
	return r.listed, nil
}

func (r *stubStoreRepo) FindWithinRadius(_ context.Context, _, _, radius int) ([]models.Store, error) {
	r.radiusSeen = radius
	return r.listed, nil
}

func (r *stubStoreRepo) FindNearest(context.Context, int, int) (*models.Store, error) {
	if r.store == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.store, nil
}

func (r *stubStoreRepo) SearchKeyword(context.Context, string) ([]models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.searchCalls++
	return r.listed, nil
}

func (r *stubStoreRepo) SearchName(context.Context, string) ([]models.Store, error) {
	r.searchCalls++
	return r.listed, nil
}

func (r *stubStoreRepo) SearchPhone(context.Context, string) ([]models.Store, error) {
	r.searchCalls++
	return r.listed, nil
}

func (r *stubStoreRepo) CountActive(context.Context) (int64, error) {
	return int64(len(r.listed)), nil
}

func (r *stubStoreRepo) CountByZone(context.Context) (map[int]int64, error) {
	return map[int]int64{1: 2}, nil
}

func (r *stubStoreRepo) Update(_ context.Context, store *models.Store) error {
	r.updatedStore = store
	return nil
}

func (r *stubStoreRepo) SoftDelete(_ context.Context, id int64) error {
	if r.store == nil || r.store.StoreID != id {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stubStoreRepo) Purge(_ context.Context, id int64) ([]string, error) {
	if r.store == nil || r.store.StoreID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.purgedURLs, nil
}

type stubFileRemover struct {
	removed []string
	err     error
}

func (f *stubFileRemover) Remove(publicURL string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, publicURL)
	return nil
}

type stubRecorder struct {
	records   int
	lastType  enums.SearchType
	lastCount int
	lastTerm  *string
	today     int64
	err       error
}

func (s *stubRecorder) Record(_ context.Context, keyword *string, searchType enums.SearchType, resultCount int) error {
	if s.err != nil {
		return s.err
	}
	s.records++
	s.lastTerm = keyword
	s.lastType = searchType
	s.lastCount = resultCount
	return nil
}

func (s *stubRecorder) CountToday(context.Context) (int64, error) {
	return s.today, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo *stubStoreRepo, rec *stubRecorder) Service {
	t.Helper()
	svc, err := NewService(repo, rec, nil, testLogger(), config.SearchConfig{DefaultRadius: 50}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func baseStore() *models.Store {
	code := "A-01"
	return &models.Store{
		StoreID:     7,
		StoreName:   "Fish Stall",
		StoreCode:   &code,
		XCoordinate: 100,
		YCoordinate: 200,
		IsActive:    true,
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, &stubRecorder{}, nil, testLogger(), config.SearchConfig{}, nil); err == nil {
		t.Fatal("expected error without repo")
	}
	if _, err := NewService(&stubStoreRepo{}, nil, nil, testLogger(), config.SearchConfig{}, nil); err == nil {
		t.Fatal("expected error without recorder")
	}
	if _, err := NewService(&stubStoreRepo{}, &stubRecorder{}, nil, nil, config.SearchConfig{}, nil); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestSearchKeywordLogsExactlyOnce(t *testing.T) {
	repo := &stubStoreRepo{listed: []models.Store{*baseStore(), *baseStore()}}
	rec := &stubRecorder{}
	svc := newTestService(t, repo, rec)

	results, err := svc.SearchKeyword(context.Background(), "fish")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if rec.records != 1 {
		t.Fatalf("expected exactly one log write, got %d", rec.records)
	}
	if rec.lastTerm == nil || *rec.lastTerm != "fish" {
		t.Fatalf("expected keyword 'fish', got %v", rec.lastTerm)
	}
	if rec.lastType != enums.SearchTypeKeyword {
		t.Fatalf("expected KEYWORD type, got %s", rec.lastType)
	}
	if rec.lastCount != 2 {
		t.Fatalf("expected result count 2, got %d", rec.lastCount)
	}
}

func TestSearchKeywordBlankFallsBackToListAll(t *testing.T) {
	repo := &stubStoreRepo{listed: []models.Store{*baseStore()}}
	rec := &stubRecorder{}
	svc := newTestService(t, repo, rec)

	results, err := svc.SearchKeyword(context.Background(), "   ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if repo.listCalls != 1 || repo.searchCalls != 0 {
		t.Fatalf("expected listing path, got list=%d search=%d", repo.listCalls, repo.searchCalls)
	}
	if rec.records != 0 {
		t.Fatalf("blank keyword must not be logged, got %d writes", rec.records)
	}
}

func TestSearchKeywordSurvivesLogFailure(t *testing.T) {
	repo := &stubStoreRepo{listed: []models.Store{*baseStore()}}
	rec := &stubRecorder{err: errors.New("log store down")}
	svc := newTestService(t, repo, rec)

	results, err := svc.SearchKeyword(context.Background(), "fish")
	if err != nil {
		t.Fatalf("search must not fail on a log error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestSearchKeywordSurfacesCatalogFailure(t *testing.T) {
	repo := &stubStoreRepo{err: errors.New("catalog down")}
	svc := newTestService(t, repo, &stubRecorder{})

	_, err := svc.SearchKeyword(context.Background(), "fish")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestSearchNameDoesNotLog(t *testing.T) {
	repo := &stubStoreRepo{listed: []models.Store{*baseStore()}}
	rec := &stubRecorder{}
	svc := newTestService(t, repo, rec)

	if _, err := svc.SearchName(context.Background(), "Fish"); err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if _, err := svc.SearchPhone(context.Background(), "1234"); err != nil {
		t.Fatalf("search by phone: %v", err)
	}
	if rec.records != 0 {
		t.Fatalf("field-scoped searches must not log, got %d writes", rec.records)
	}
}

func TestSearchLocationAppliesDefaultRadius(t *testing.T) {
	repo := &stubStoreRepo{}
	svc := newTestService(t, repo, &stubRecorder{})

	if _, err := svc.SearchLocation(context.Background(), 100, 100, 0); err != nil {
		t.Fatalf("search location: %v", err)
	}
	if repo.radiusSeen != 50 {
		t.Fatalf("expected default radius 50, got %d", repo.radiusSeen)
	}

	if _, err := svc.SearchLocation(context.Background(), 100, 100, 25); err != nil {
		t.Fatalf("search location: %v", err)
	}
	if repo.radiusSeen != 25 {
		t.Fatalf("expected radius 25, got %d", repo.radiusSeen)
	}
}

func TestSearchLocationRejectsBadCoordinates(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{}, &stubRecorder{})

	_, err := svc.SearchLocation(context.Background(), 0, 100, 10)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNearestNotFoundOnEmptyCatalog(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{}, &stubRecorder{})

	_, err := svc.Nearest(context.Background(), 100, 100)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestListByZoneOutOfRangeIsEmptyNotError(t *testing.T) {
	repo := &stubStoreRepo{listed: []models.Store{*baseStore()}}
	svc := newTestService(t, repo, &stubRecorder{})

	results, err := svc.ListByZone(context.Background(), 9)
	if err != nil {
		t.Fatalf("list by zone: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty listing, got %d", len(results))
	}
	if repo.listCalls != 0 {
		t.Fatal("out-of-range zone must not hit the repository")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{}, &stubRecorder{})

	_, err := svc.GetByID(context.Background(), 999)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{}, &stubRecorder{})
	ctx := context.Background()

	cases := []struct {
		name string
		dto  CreateStoreDTO
	}{
		{"missing name", CreateStoreDTO{X: 10, Y: 10}},
		{"blank name", CreateStoreDTO{Name: "   ", X: 10, Y: 10}},
		{"zero x", CreateStoreDTO{Name: "Stall", X: 0, Y: 10}},
		{"negative y", CreateStoreDTO{Name: "Stall", X: 10, Y: -1}},
		{"zone too low", CreateStoreDTO{Name: "Stall", X: 10, Y: 10, ZoneNumber: intPtr(0)}},
		{"zone too high", CreateStoreDTO{Name: "Stall", X: 10, Y: 10, ZoneNumber: intPtr(6)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.dto)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateRejectsDuplicateActiveCode(t *testing.T) {
	repo := &stubStoreRepo{codeTaken: true}
	svc := newTestService(t, repo, &stubRecorder{})

	_, err := svc.Create(context.Background(), CreateStoreDTO{Name: "Stall", Code: strPtr("A-01"), X: 10, Y: 10})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreateNormalizesBlankCode(t *testing.T) {
	repo := &stubStoreRepo{}
	svc := newTestService(t, repo, &stubRecorder{})

	dto, err := svc.Create(context.Background(), CreateStoreDTO{Name: "Stall", Code: strPtr("  "), X: 10, Y: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Code != nil {
		t.Fatalf("expected blank code to fold to nil, got %q", *dto.Code)
	}
}

func TestUpdateExcludesSelfFromCodeCheck(t *testing.T) {
	repo := &stubStoreRepo{store: baseStore()}
	svc := newTestService(t, repo, &stubRecorder{})

	_, err := svc.Update(context.Background(), 7, UpdateStoreInput{Code: strPtr("A-01")})
	if err != nil {
		t.Fatalf("no-op code update must be legal: %v", err)
	}
	if repo.excludeSeen != 7 {
		t.Fatalf("expected collision check to exclude id 7, got %d", repo.excludeSeen)
	}
}

func TestUpdateRevalidatesCoordinates(t *testing.T) {
	repo := &stubStoreRepo{store: baseStore()}
	svc := newTestService(t, repo, &stubRecorder{})

	_, err := svc.Update(context.Background(), 7, UpdateStoreInput{X: intPtr(-5)})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSoftDeleteNotFound(t *testing.T) {
	svc := newTestService(t, &stubStoreRepo{}, &stubRecorder{})

	err := svc.SoftDelete(context.Background(), 404)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestPurgeRemovesImageFiles(t *testing.T) {
	repo := &stubStoreRepo{
		store:      baseStore(),
		purgedURLs: []string{"/uploads/a.png", "/uploads/b.png"},
	}
	files := &stubFileRemover{}
	svc, err := NewService(repo, &stubRecorder{}, files, testLogger(), config.SearchConfig{DefaultRadius: 50}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Purge(context.Background(), 7); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if len(files.removed) != 2 || files.removed[0] != "/uploads/a.png" || files.removed[1] != "/uploads/b.png" {
		t.Fatalf("expected purged image files removed, got %v", files.removed)
	}
}

func TestPurgeSurvivesFileCleanupFailure(t *testing.T) {
	repo := &stubStoreRepo{
		store:      baseStore(),
		purgedURLs: []string{"/uploads/a.png"},
	}
	files := &stubFileRemover{err: errors.New("unlink failed")}
	svc, err := NewService(repo, &stubRecorder{}, files, testLogger(), config.SearchConfig{DefaultRadius: 50}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Purge(context.Background(), 7); err != nil {
		t.Fatalf("purge must not fail on file cleanup: %v", err)
	}
}

func TestStatsCombinesCatalogAndLogCounts(t *testing.T) {
	repo := &stubStoreRepo{listed: []models.Store{*baseStore(), *baseStore(), *baseStore()}}
	rec := &stubRecorder{today: 12}
	svc := newTestService(t, repo, rec)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalActive != 3 {
		t.Fatalf("expected 3 active stores, got %d", stats.TotalActive)
	}
	if stats.SearchesToday != 12 {
		t.Fatalf("expected 12 searches today, got %d", stats.SearchesToday)
	}
	if stats.CountByZone[1] != 2 {
		t.Fatalf("expected 2 stores in zone 1, got %d", stats.CountByZone[1])
	}
}
