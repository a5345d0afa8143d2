package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"reno_server/server/accounts/domain"
	"reno_server/server/accounts/repository"
	commonauth "reno_server/server/common/auth"
)

var (
	ErrEmailTaken         = repository.ErrEmailTaken
	ErrUserNotFound       = repository.ErrNotFound
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries a client-facing message for a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

type userStore interface {
	Create(ctx context.Context, user domain.User) error
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

type SignupRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Company  *string `json:"company"`
	Phone    *string `json:"phone"`
}

type AccountService struct {
	users userStore
	auth  *commonauth.Service
}

func NewAccountService(users userStore, auth *commonauth.Service) *AccountService {
	return &AccountService{users: users, auth: auth}
}

func (s *AccountService) Signup(ctx context.Context, req SignupRequest) (domain.User, string, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return domain.User{}, "", &ValidationError{Message: "Name, email, and password are required"}
	}
	if !emailPattern.MatchString(req.Email) {
		return domain.User{}, "", &ValidationError{Message: "Invalid email format"}
	}
	if len(req.Password) < minPasswordLength {
		return domain.User{}, "", &ValidationError{Message: "Password must be at least 6 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}

	now := time.Now().UTC()
	user := domain.User{
		Email:        req.Email,
		UserID:       domain.NewUserID(),
		Name:         req.Name,
		PasswordHash: string(hash),
		Company:      req.Company,
		Phone:        req.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, "", err
	}

	token, err := s.auth.Issue(user.UserID, user.Email)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	if email == "" || password == "" {
		return domain.User{}, "", &ValidationError{Message: "Email and password are required"}
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.auth.Issue(user.UserID, user.Email)
	if err != nil {
		return domain.User{}, "", err
	}
	user.PasswordHash = ""
	return user, token, nil
}

func (s *AccountService) Profile(ctx context.Context, email string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}
