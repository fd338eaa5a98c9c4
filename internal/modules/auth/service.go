package auth

import (
	"context"
	"errors"
	"strings"

	"docvault/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

// Service contains all business logic for authentication
type Service struct {
	users       UserRepositoryInterface
	departments DepartmentReader
	jwt         jwtService
}

func NewService(users UserRepositoryInterface, departments DepartmentReader, jwt jwtService) *Service {
	return &Service{
		users:       users,
		departments: departments,
		jwt:         jwt,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	if req.DepartmentID != nil {
		ok, err := s.departments.Exists(ctx, *req.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnknownDepartment
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login deliberately collapses unknown-username and wrong-password into one
// error so callers cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}

	user.PasswordHash = ""
	return user, token, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
