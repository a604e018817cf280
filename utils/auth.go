// utils/auth.go
package utils

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tableorder-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for new password hashes.
var BcryptCost = 12

// Context keys set by AuthMiddleware.
const (
	ContextManagerID = "managerId"
	ContextManager   = "manager"
)

var (
	ErrTokenMissing = errors.New("authorization token required")
	ErrTokenInvalid = errors.New("token is not valid")
)

// GenerateJWTSecret returns a random base64 key suitable for JWT_SECRET.
func GenerateJWTSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate JWT secret")
	}
	return base64.StdEncoding.EncodeToString(key)
}

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 manager tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not set")
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("token expiry must be positive, got %s", expiry)
	}
	return &TokenManager{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

func (m *TokenManager) Expiry() time.Duration { return m.expiry }

// Generate issues a token for the manager and returns its expiry time.
func (m *TokenManager) Generate(managerID uuid.UUID, role string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.expiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   managerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies the token and returns the manager id it was issued for.
func (m *TokenManager) Parse(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, ErrTokenMissing
	}
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrTokenInvalid
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// Authenticator resolves a bearer token to the manager it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Manager, error)
}

// Auth middleware
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := BearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		manager, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			// Errors with a status are client-safe; anything else is an
			// internal failure such as the store being down.
			var statusErr interface{ Status() int }
			if errors.As(err, &statusErr) {
				RespondWithError(c, statusErr.Status(), err.Error())
				return
			}
			slog.Default().Error("authentication failed", "path", c.FullPath(), "error", err)
			RespondWithError(c, http.StatusInternalServerError, "Authentication failed")
			return
		}

		c.Set(ContextManagerID, manager.ID)
		c.Set(ContextManager, manager)
		c.Next()
	}
}

// CurrentManager returns the manager stored by AuthMiddleware.
func CurrentManager(c *gin.Context) (*models.Manager, bool) {
	value, exists := c.Get(ContextManager)
	if !exists {
		return nil, false
	}
	manager, ok := value.(*models.Manager)
	return manager, ok
}
