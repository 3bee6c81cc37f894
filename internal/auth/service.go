package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid_credentials")

type Employee struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error)
	GetEmployeeByID(ctx context.Context, id string) (*Employee, error)
}

type LoginResult struct {
	AccessToken string
	Employee    *Employee
}

type Service struct {
	repo      Repository
	jwt       *JWTManager
	accessTTL time.Duration
}

func NewService(repo Repository, jwt *JWTManager, accessTTL time.Duration) *Service {
	return &Service{repo: repo, jwt: jwt, accessTTL: accessTTL}
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	employee, err := s.repo.GetEmployeeByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.Mint(employee.ID, employee.Role, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, Employee: employee}, nil
}

func (s *Service) Me(ctx context.Context, employeeID string) (*Employee, error) {
	return s.repo.GetEmployeeByID(ctx, employeeID)
}
