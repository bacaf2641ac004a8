package service

import (
	"context"
	"testing"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubCredentialStore struct {
	users  map[string]*models.User
	admins map[string]*models.Admin
	nextID int64
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{
		users:  map[string]*models.User{},
		admins: map[string]*models.Admin{},
	}
}

func (s *stubCredentialStore) CreateUser(ctx context.Context, user *models.User) error {
	if _, ok := s.users[user.Email]; ok {
		return errs.ErrConflict
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.Email] = user
	return nil
}

func (s *stubCredentialStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return user, nil
}

func (s *stubCredentialStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s *stubCredentialStore) SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	user.ResetToken = &token
	user.ResetTokenExp = &expiresAt
	return nil
}

func (s *stubCredentialStore) ConsumeResetToken(ctx context.Context, userID int64, token, newHash string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return errs.ErrValidation
	}
	if user.ResetToken == nil || *user.ResetToken != token ||
		user.ResetTokenExp == nil || user.ResetTokenExp.Before(time.Now()) {
		return errs.ErrValidation
	}
	user.PasswordHash = newHash
	user.ResetToken = nil
	user.ResetTokenExp = nil
	return nil
}

func (s *stubCredentialStore) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin, ok := s.admins[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return admin, nil
}

func authFixture() (*AuthService, *stubCredentialStore) {
	store := newStubCredentialStore()
	return NewAuthService(store, "test-secret", time.Hour, time.Hour, 15*time.Minute), store
}

func TestRegisterAndLoginUser(t *testing.T) {
	svc, _ := authFixture()

	user, err := svc.RegisterUser(context.Background(), "Ana", "ana@example.com", "hunter22", nil)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "hunter22", user.PasswordHash, "password must never be stored verbatim")

	token, logged, err := svc.LoginUser(context.Background(), "ana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, RoleCustomer, claims.Role)
}

func TestLoginUserWrongPassword(t *testing.T) {
	svc, _ := authFixture()

	_, err := svc.RegisterUser(context.Background(), "Ana", "ana@example.com", "hunter22", nil)
	require.NoError(t, err)

	_, _, err = svc.LoginUser(context.Background(), "ana@example.com", "wrong")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	// unknown account yields the same error as a wrong password
	_, _, err = svc.LoginUser(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestRegisterUserValidation(t *testing.T) {
	svc, _ := authFixture()

	_, err := svc.RegisterUser(context.Background(), "", "ana@example.com", "hunter22", nil)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.RegisterUser(context.Background(), "Ana", "ana@example.com", "short", nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	svc, _ := authFixture()

	_, err := svc.RegisterUser(context.Background(), "Ana", "ana@example.com", "hunter22", nil)
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), "Other", "ana@example.com", "hunter22", nil)
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestLoginAdmin(t *testing.T) {
	svc, store := authFixture()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-adm"), bcrypt.MinCost)
	require.NoError(t, err)
	store.admins["boss@example.com"] = &models.Admin{
		ID:           1,
		Name:         "Boss",
		Email:        "boss@example.com",
		PasswordHash: string(hash),
	}

	token, admin, err := svc.LoginAdmin(context.Background(), "boss@example.com", "s3cret-adm")
	require.NoError(t, err)
	assert.Equal(t, int64(1), admin.ID)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestParseTokenRejectsForgery(t *testing.T) {
	svc, _ := authFixture()
	other := NewAuthService(newStubCredentialStore(), "other-secret", time.Hour, time.Hour, time.Minute)

	token, err := other.issueToken(1, RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, store := authFixture()

	_, err := svc.RegisterUser(context.Background(), "Ana", "ana@example.com", "hunter22", nil)
	require.NoError(t, err)

	require.NoError(t, svc.RecoverPassword(context.Background(), "ana@example.com"))

	user := store.users["ana@example.com"]
	require.NotNil(t, user.ResetToken)
	token := *user.ResetToken

	require.NoError(t, svc.ResetPassword(context.Background(), token, "new-password"))

	// old password no longer works, new one does
	_, _, err = svc.LoginUser(context.Background(), "ana@example.com", "hunter22")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
	_, _, err = svc.LoginUser(context.Background(), "ana@example.com", "new-password")
	assert.NoError(t, err)

	// the token is single-use
	err = svc.ResetPassword(context.Background(), token, "another-password")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRecoverPasswordUnknownEmail(t *testing.T) {
	svc, _ := authFixture()

	// unknown accounts are not revealed to the caller
	assert.NoError(t, svc.RecoverPassword(context.Background(), "ghost@example.com"))
}

func TestResetPasswordRejectsNonRecoveryToken(t *testing.T) {
	svc, _ := authFixture()

	_, err := svc.RegisterUser(context.Background(), "Ana", "ana@example.com", "hunter22", nil)
	require.NoError(t, err)

	// a login token must not pass as a recovery token
	token, _, err := svc.LoginUser(context.Background(), "ana@example.com", "hunter22")
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), token, "new-password")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
