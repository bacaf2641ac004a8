package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/models"
	"orders-api/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Roles carried in token claims.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleRecovery = "recovery"
)

const minPasswordLen = 6

// CredentialStore is the persistence surface authentication depends on.
type CredentialStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, userID int64, token, newHash string) error
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// Claims are the JWT claims issued by this service.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies bearer tokens for customers and admins and
// runs the password-recovery flow.
type AuthService struct {
	store    CredentialStore
	secret   []byte
	userTTL  time.Duration
	adminTTL time.Duration
	resetTTL time.Duration
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store CredentialStore, secret string, userTTL, adminTTL, resetTTL time.Duration) *AuthService {
	return &AuthService{
		store:    store,
		secret:   []byte(secret),
		userTTL:  userTTL,
		adminTTL: adminTTL,
		resetTTL: resetTTL,
		logger:   util.GetLogger(),
	}
}

// RegisterUser creates a customer account with a bcrypt-hashed password.
func (as *AuthService) RegisterUser(ctx context.Context, name, email, password string, phone *string) (*models.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("name and email are required: %w", errs.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must have at least %d characters: %w",
			minPasswordLen, errs.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        phone,
	}
	if err := as.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	as.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// LoginUser verifies customer credentials and issues a bearer token.
func (as *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := as.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
	}

	token, err := as.issueToken(user.ID, RoleCustomer, as.userTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// LoginAdmin verifies admin credentials and issues an admin bearer token.
func (as *AuthService) LoginAdmin(ctx context.Context, email, password string) (string, *models.Admin, error) {
	admin, err := as.store.GetAdminByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
	}

	token, err := as.issueToken(admin.ID, RoleAdmin, as.adminTTL)
	if err != nil {
		return "", nil, err
	}
	return token, admin, nil
}

// GetUser retrieves a customer account.
func (as *AuthService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return as.store.GetUserByID(ctx, id)
}

// RecoverPassword stores a short-lived recovery token for the account. It
// never reveals whether the email exists.
func (as *AuthService) RecoverPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required: %w", errs.ErrValidation)
	}

	user, err := as.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := as.issueToken(user.ID, RoleRecovery, as.resetTTL)
	if err != nil {
		return err
	}
	if err := as.store.SetResetToken(ctx, user.ID, token, time.Now().Add(as.resetTTL)); err != nil {
		return err
	}

	// TODO: hand the token to a mail sender instead of the log.
	as.logger.Info("Password recovery token issued", zap.Int64("user_id", user.ID))
	return nil
}

// ResetPassword verifies a recovery token and rehashes the password. The
// stored token is single-use: consuming it clears it.
func (as *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("password must have at least %d characters: %w",
			minPasswordLen, errs.ErrValidation)
	}

	claims, err := as.ParseToken(token)
	if err != nil || claims.Role != RoleRecovery {
		return fmt.Errorf("invalid or expired recovery token: %w", errs.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return as.store.ConsumeResetToken(ctx, claims.UserID, token, string(hash))
}

// ParseToken verifies a bearer token and returns its claims.
func (as *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token: %w", errs.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims: %w", errs.ErrUnauthorized)
	}
	return claims, nil
}

func (as *AuthService) issueToken(userID int64, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "orders-api",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
