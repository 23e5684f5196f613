package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/finaurial/finance-tracker/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput is the body of POST /api/auth/register
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new user with hashed password and returns a token for it
func (s *Service) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return "", invalid("Please enter all fields")
	}
	var c checker
	c.require(emailPattern.MatchString(in.Email), "Please enter a valid email")
	c.require(len(in.Password) >= minPasswordLength, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	if err := c.err(); err != nil {
		return "", err
	}

	if _, err := s.repo.FindUserByEmail(ctx, in.Email); err == nil {
		return "", invalid("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if _, err := s.repo.FindUserByUsername(ctx, in.Username); err == nil {
		return "", invalid("Username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	user, err := s.CreateUser(ctx, in.Username, in.Email, in.Password, models.RoleUser)
	if err != nil {
		return "", err
	}

	s.log.Infof("User registered: %s", user.Email)
	return s.tokens.Generate(user)
}

// CreateUser hashes password and stores a user with the given role
func (s *Service) CreateUser(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user", ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", invalid("Please enter all fields")
	}

	user, err := s.repo.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", invalid("Invalid credentials")
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", invalid("Invalid credentials")
	}
	if user.IsSuspended {
		s.log.Warnf("Suspended user attempted login: %s", user.Email)
		return "", fmt.Errorf("%w: account is suspended", ErrForbidden)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return token, nil
}

// Authenticate resolves a bearer token to the caller's current identity.
// The role comes from the stored user so demotions apply immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	claimed, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.repo.FindUserByID(ctx, claimed.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if user.IsSuspended {
		return nil, fmt.Errorf("%w: account is suspended", ErrForbidden)
	}
	return &auth.Identity{ID: user.ID, Role: user.Role}, nil
}

// Me returns the caller's profile
func (s *Service) Me(ctx context.Context, caller auth.Identity) (*models.User, error) {
	user, err := s.repo.FindUserByID(ctx, caller.ID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return user, nil
}

// UserSavings returns the caller's cached savings balance
func (s *Service) UserSavings(ctx context.Context, caller auth.Identity) (float64, error) {
	user, err := s.Me(ctx, caller)
	if err != nil {
		return 0, err
	}
	return user.Savings, nil
}

// AdjustUserSavings moves the cached savings balance by amount; it never goes below zero
func (s *Service) AdjustUserSavings(ctx context.Context, caller auth.Identity, amount float64) (float64, error) {
	if amount == 0 {
		return 0, invalid("Please enter a valid amount")
	}

	balance, err := s.repo.AdjustUserSavings(ctx, caller.ID, amount)
	switch {
	case errors.Is(err, repository.ErrInsufficientSavings):
		return 0, invalid("Insufficient savings")
	case err != nil:
		return 0, notFound(err, "User")
	}

	s.log.Infof("Savings adjusted for user %s by %.2f, balance %.2f", caller.ID, amount, balance)
	return balance, nil
}

// SetRole promotes or demotes an existing user, used by the admin bootstrap command
func (s *Service) SetRole(ctx context.Context, email string, role models.Role) (*models.User, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "User")
	}
	user.Role = role
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Infof("User %s is now %s", user.Email, role)
	return user, nil
}
