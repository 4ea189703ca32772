package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/config"
	dblib "github.com/sijangmap/marketmap-backend/pkg/db"
	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
	"github.com/sijangmap/marketmap-backend/pkg/security"
)

const tempPasswordLen = 16

// AdminDTO exposes safe admin-account fields.
type AdminDTO struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"display_name,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type adminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id int64) (*models.Admin, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Service exposes admin account management and authentication.
type Service interface {
	Authenticate(ctx context.Context, username, password string) (*AdminDTO, error)
	GetByID(ctx context.Context, id int64) (*AdminDTO, error)
	Create(ctx context.Context, username string, displayName *string) (*AdminDTO, string, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
}

type service struct {
	repo        adminRepository
	logg        *logger.Logger
	passwordCfg config.PasswordConfig
}

// NewService builds the admin service.
func NewService(repo adminRepository, logg *logger.Logger, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, passwordCfg: passwordCfg}, nil
}

// Authenticate verifies the credentials of an active admin. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *service) Authenticate(ctx context.Context, username, password string) (*AdminDTO, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	admin, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}

	ok, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if err := s.repo.TouchLastLogin(ctx, admin.AdminID, time.Now()); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("last-login stamp failed: %v", err))
	}
	s.logg.Info(s.logg.WithAdminID(ctx, admin.AdminID), "admin authenticated")
	return fromModel(admin), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*AdminDTO, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}
	return fromModel(admin), nil
}

// Create provisions an admin account with a generated temporary
// password, returned once for out-of-band delivery.
func (s *service) Create(ctx context.Context, username string, displayName *string) (*AdminDTO, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if len([]rune(username)) > 50 {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "username exceeds 50 characters")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLen)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if dblib.IsUniqueViolation(err, "admins_username_key") {
			return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
	}
	return fromModel(admin), tempPassword, nil
}

func (s *service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if len(next) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}

	ok, err := security.VerifyPassword(current, admin.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(next, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	s.logg.Info(s.logg.WithAdminID(ctx, id), "admin password changed")
	return nil
}

func fromModel(m *models.Admin) *AdminDTO {
	return &AdminDTO{
		ID:          m.AdminID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
	}
}
