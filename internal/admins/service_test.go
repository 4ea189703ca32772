package admins

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/config"
	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
	"github.com/sijangmap/marketmap-backend/pkg/security"
)

type stubAdminRepo struct {
	admin       *models.Admin
	createErr   error
	createdHash string
	updatedHash string
	lastLoginAt *time.Time
}

func (r *stubAdminRepo) Create(_ context.Context, admin *models.Admin) error {
	if r.createErr != nil {
		return r.createErr
	}
	admin.AdminID = 1
	r.createdHash = admin.PasswordHash
	return nil
}

func (r *stubAdminRepo) FindByUsername(_ context.Context, username string) (*models.Admin, error) {
	if r.admin == nil || r.admin.Username != username || !r.admin.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return r.admin, nil
}

func (r *stubAdminRepo) FindByID(_ context.Context, id int64) (*models.Admin, error) {
	if r.admin == nil || r.admin.AdminID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.admin, nil
}

func (r *stubAdminRepo) UpdatePasswordHash(_ context.Context, _ int64, hash string) error {
	r.updatedHash = hash
	return nil
}

func (r *stubAdminRepo) TouchLastLogin(_ context.Context, _ int64, at time.Time) error {
	r.lastLoginAt = &at
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo *stubAdminRepo) Service {
	t.Helper()
	svc, err := NewService(repo, testLogger(), testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seededAdmin(t *testing.T, password string) *models.Admin {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.Admin{AdminID: 1, Username: "market-admin", PasswordHash: hash, IsActive: true}
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := &stubAdminRepo{admin: seededAdmin(t, "correct-horse")}
	svc := newTestService(t, repo)

	dto, err := svc.Authenticate(context.Background(), "market-admin", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if dto.ID != 1 || dto.Username != "market-admin" {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if repo.lastLoginAt == nil {
		t.Fatal("expected last login stamp")
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := &stubAdminRepo{admin: seededAdmin(t, "correct-horse")}
	svc := newTestService(t, repo)

	_, err := svc.Authenticate(context.Background(), "market-admin", "battery-staple")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthenticateUnknownUserLooksIdentical(t *testing.T) {
	repo := &stubAdminRepo{admin: seededAdmin(t, "correct-horse")}
	svc := newTestService(t, repo)

	_, errUnknown := svc.Authenticate(context.Background(), "nobody", "whatever")
	_, errWrong := svc.Authenticate(context.Background(), "market-admin", "wrong")

	for _, err := range []error{errUnknown, errWrong} {
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if appErr.Message() != "invalid credentials" {
			t.Fatalf("expected uniform message, got %q", appErr.Message())
		}
	}
}

func TestAuthenticateInactiveAdmin(t *testing.T) {
	admin := seededAdmin(t, "correct-horse")
	admin.IsActive = false
	svc := newTestService(t, &stubAdminRepo{admin: admin})

	_, err := svc.Authenticate(context.Background(), "market-admin", "correct-horse")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCreateIssuesTempPassword(t *testing.T) {
	repo := &stubAdminRepo{}
	svc := newTestService(t, repo)

	dto, tempPassword, err := svc.Create(context.Background(), "new-admin", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Username != "new-admin" {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if len(tempPassword) != tempPasswordLen {
		t.Fatalf("expected %d char password, got %d", tempPasswordLen, len(tempPassword))
	}

	ok, err := security.VerifyPassword(tempPassword, repo.createdHash)
	if err != nil || !ok {
		t.Fatalf("temp password must verify against stored hash: ok=%v err=%v", ok, err)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := &stubAdminRepo{
		createErr: errors.New(`ERROR: duplicate key value violates unique constraint "admins_username_key"`),
	}
	svc := newTestService(t, repo)

	_, _, err := svc.Create(context.Background(), "market-admin", nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, &stubAdminRepo{})

	_, _, err := svc.Create(context.Background(), "  ", nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	repo := &stubAdminRepo{admin: seededAdmin(t, "old-password")}
	svc := newTestService(t, repo)

	if err := svc.ChangePassword(context.Background(), 1, "old-password", "new-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	ok, err := security.VerifyPassword("new-password", repo.updatedHash)
	if err != nil || !ok {
		t.Fatalf("new password must verify: ok=%v err=%v", ok, err)
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	repo := &stubAdminRepo{admin: seededAdmin(t, "old-password")}
	svc := newTestService(t, repo)

	err := svc.ChangePassword(context.Background(), 1, "not-it", "new-password")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestChangePasswordRejectsShortPassword(t *testing.T) {
	svc := newTestService(t, &stubAdminRepo{admin: seededAdmin(t, "old-password")})

	err := svc.ChangePassword(context.Background(), 1, "old-password", "short")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
