package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tableorder-backend/models"
	"tableorder-backend/store"
	"tableorder-backend/utils"
)

// Login failures share one message so callers cannot tell unknown users
// from wrong passwords.
const invalidCredentials = "Invalid credentials"

type RegisterInput struct {
	Username string `validate:"required,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"min=6,max=72"`
	Role     string `validate:"oneof=manager admin"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Manager   *models.Manager `json:"manager"`
}

type AuthService struct {
	store  store.Store
	tokens *utils.TokenManager
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(s store.Store, tokens *utils.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{store: s, tokens: tokens, logger: logger.With("component", "auth_service")}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.TrimSpace(in.Role)
	if in.Role == "" {
		in.Role = models.RoleManager
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	username, email, role := in.Username, in.Email, in.Role

	exists, err := s.store.Managers().Exists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check manager: %w", err)
	}
	if exists {
		return nil, newError(KindConflict, "Manager already exists")
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	manager := &models.Manager{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     role,
	}
	// Exists is only a fast path; the unique indexes decide races.
	if err := s.store.Managers().Create(ctx, manager); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(KindConflict, "Manager already exists")
		}
		return nil, fmt.Errorf("create manager: %w", err)
	}

	s.logger.Info("manager registered", "manager_id", manager.ID, "username", manager.Username)
	return s.issue(manager)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	manager, err := s.store.Managers().GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		// Burn the same time as a real comparison.
		utils.CheckPasswordHash(password, s.dummy())
		s.logger.Info("login failed", "reason", "unknown user")
		return nil, newError(KindAuth, invalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("find manager: %w", err)
	}
	if !utils.CheckPasswordHash(password, manager.Password) {
		s.logger.Info("login failed", "reason", "password mismatch", "manager_id", manager.ID)
		return nil, newError(KindAuth, invalidCredentials)
	}

	now := time.Now()
	if err := s.store.Managers().TouchLogin(ctx, manager.ID, now); err != nil {
		s.logger.Warn("failed to record last login", "manager_id", manager.ID, "error", err)
	} else {
		manager.LastLogin = &now
	}
	return s.issue(manager)
}

// Authenticate implements utils.Authenticator.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Manager, error) {
	id, err := s.tokens.Parse(token)
	if errors.Is(err, utils.ErrTokenMissing) {
		return nil, newError(KindAuth, "Authorization header required")
	}
	if err != nil {
		return nil, newError(KindAuth, "Token is not valid")
	}
	manager, err := s.store.Managers().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindAuth, "Token is not valid")
	}
	if err != nil {
		return nil, fmt.Errorf("load manager %s: %w", id, err)
	}
	return manager, nil
}

func (s *AuthService) issue(manager *models.Manager) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(manager.ID, manager.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, Manager: manager}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("not-a-real-password")
	})
	return s.dummyHash
}
