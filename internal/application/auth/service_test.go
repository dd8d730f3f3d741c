package auth

import (
	"context"
	"testing"
	"time"

	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/pkg/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return &Service{
		DB:         db,
		Rdb:        rdb,
		Secret:     "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, db
}

func TestRegister_CreatesBroker(t *testing.T) {
	svc, _ := setupAuthTest(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jean Bosco",
		Email:    "Jean@Example.com",
		Password: "secret123",
		Phone:    "+250788123456",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBroker, user.Role)
	assert.Equal(t, "jean@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := setupAuthTest(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jean Bosco", Email: "jean@example.com", Password: "secret123", Phone: "+250788123456",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Other Jean", Email: "JEAN@example.com", Password: "secret456", Phone: "+250788123457",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := setupAuthTest(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "J", Email: "not-an-email", Password: "123", Phone: "abc",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestLogin_And_Authenticate(t *testing.T) {
	svc, _ := setupAuthTest(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jean Bosco", Email: "jean@example.com", Password: "secret123", Phone: "+250788123456",
	})
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "jean@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotNil(t, user.LastLogin)

	authed, claims, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := setupAuthTest(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jean Bosco", Email: "jean@example.com", Password: "secret123", Phone: "+250788123456",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "jean@example.com", "wrong")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, db := setupAuthTest(t)
	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jean Bosco", Email: "jean@example.com", Password: "secret123", Phone: "+250788123456",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, _, err = svc.Login(context.Background(), "jean@example.com", "secret123")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _ := setupAuthTest(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jean Bosco", Email: "jean@example.com", Password: "secret123", Phone: "+250788123456",
	})
	require.NoError(t, err)

	_, token, err := svc.Login(context.Background(), "jean@example.com", "secret123")
	require.NoError(t, err)

	_, claims, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims))

	_, _, err = svc.Authenticate(context.Background(), token)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestAuthenticate_DeactivatedAfterIssue(t *testing.T) {
	svc, db := setupAuthTest(t)
	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jean Bosco", Email: "jean@example.com", Password: "secret123", Phone: "+250788123456",
	})
	require.NoError(t, err)

	_, token, err := svc.Login(context.Background(), "jean@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, _, err = svc.Authenticate(context.Background(), token)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestChangePassword(t *testing.T) {
	svc, _ := setupAuthTest(t)
	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jean Bosco", Email: "jean@example.com", Password: "secret123", Phone: "+250788123456",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "newsecret")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "secret123", "newsecret"))

	_, _, err = svc.Login(context.Background(), "jean@example.com", "newsecret")
	assert.NoError(t, err)
}
