package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/arzan03/FilesManager/internal/models"
	"github.com/arzan03/FilesManager/internal/repository"
	"github.com/arzan03/FilesManager/internal/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AuthService registers users and turns credentials into sessions.
type AuthService struct {
	users    repository.UserRepository
	sessions session.Store
	log      *zap.SugaredLogger
}

func NewAuthService(users repository.UserRepository, sessions session.Store, log *zap.SugaredLogger) *AuthService {
	return &AuthService{users: users, sessions: sessions, log: log}
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, invalid("Missing email")
	}
	if password == "" {
		return nil, invalid("Missing password")
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{Email: email, Password: hash})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Infow("user registered", "user_id", user.ID.Hex())
	return user, nil
}

// Authenticate checks a Basic authorization header and opens a session.
func (s *AuthService) Authenticate(ctx context.Context, authorization string) (string, error) {
	email, password, ok := parseBasicAuth(authorization)
	if !ok {
		return "", ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !VerifyPassword(password, user.Password) {
		return "", ErrUnauthorized
	}

	token, err := s.sessions.Create(ctx, user.ID.Hex())
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResolveToken maps a session token to the id of the user that owns it.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	userID, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// Logout ends the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if _, err := s.ResolveToken(ctx, token); err != nil {
		return err
	}
	return s.sessions.Destroy(ctx, token)
}

// CurrentUser returns the user a session belongs to.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// parseBasicAuth decodes "Basic base64(email:password)". The password may
// itself contain colons.
func parseBasicAuth(header string) (email, password string, ok bool) {
	scheme, encoded, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", false
	}
	email, password, found = strings.Cut(string(decoded), ":")
	if !found || email == "" || password == "" {
		return "", "", false
	}
	return email, password, true
}
