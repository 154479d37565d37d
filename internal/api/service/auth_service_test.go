package service

import (
	"context"
	"testing"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/validation"
	"reviewhub/internal/mail"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthFixture(t *testing.T) (AuthService, repository.UserRepository, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewAuthService(userRepo, mail.NewLogMailer(discardLogger()), nil, discardLogger(),
		testSecret, time.Hour, 0)
	return svc, userRepo, db
}

func TestSignupCreatesUser(t *testing.T) {
	svc, userRepo, _ := newAuthFixture(t)

	user, err := svc.Signup(context.Background(), dto.SignupRequest{
		Username: "alice", Email: "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Nil(t, user.LastLogin)

	stored, err := userRepo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
}

func TestSignupResendDoesNotDuplicate(t *testing.T) {
	svc, _, db := newAuthFixture(t)
	ctx := context.Background()

	req := dto.SignupRequest{Username: "alice", Email: "alice@example.com"}
	_, err := svc.Signup(ctx, req)
	require.NoError(t, err)

	// Same pair again: succeeds without creating a second row.
	_, err = svc.Signup(ctx, req)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSignupRejectsConflicts(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	var ferr *validation.FieldError

	_, err = svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "other@example.com"})
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "username", ferr.Field)

	_, err = svc.Signup(ctx, dto.SignupRequest{Username: "bob", Email: "alice@example.com"})
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "email", ferr.Field)
}

func TestSignupRejectsReservedUsername(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	var ferr *validation.FieldError
	_, err := svc.Signup(context.Background(), dto.SignupRequest{Username: "me", Email: "me@example.com"})
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "username", ferr.Field)
}

func TestIssueToken(t *testing.T) {
	svc, userRepo, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	code := ConfirmationCode(testSecret, user)
	tokenString, err := svc.IssueToken(ctx, "alice", code)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, "alice", claims["username"])

	// The token exchange sets last_login.
	stored, err := userRepo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestIssueTokenRetiresOldCode(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	code := ConfirmationCode(testSecret, user)
	_, err = svc.IssueToken(ctx, "alice", code)
	require.NoError(t, err)

	// last_login changed, so the pre-login code no longer verifies.
	_, err = svc.IssueToken(ctx, "alice", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestIssueTokenWrongCode(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = svc.IssueToken(ctx, "alice", "definitely-wrong")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestIssueTokenUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.IssueToken(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	tokenString, err := svc.IssueToken(ctx, "alice", ConfirmationCode(testSecret, user))
	require.NoError(t, err)

	userID, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
