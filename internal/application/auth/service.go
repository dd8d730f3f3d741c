package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"plotsure-backend/internal/application/notifications"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/validation"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const denylistPrefix = "token:revoked:"

// Service owns accounts and token issue/verify. Rdb backs the logout
// denylist; when nil, logout is a client-side discard only.
type Service struct {
	DB         *gorm.DB
	Rdb        *redis.Client
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	Dispatcher *notifications.Dispatcher
}

// Claims carried in access tokens. The ID (jti) keys the logout denylist.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
}

func (s *Service) cost() int {
	if s.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.BcryptCost
}

// Register creates a staff account. Duplicate email is a Conflict; the
// welcome email is fire-and-forget.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	fields := map[string]string{}
	if !validation.LenBetween(in.Name, 2, 100) {
		fields["name"] = "Name must be between 2 and 100 characters"
	}
	if !validation.IsValidEmail(in.Email) {
		fields["email"] = "Please provide a valid email"
	}
	if len(in.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters long"
	}
	if !validation.IsValidPhone(in.Phone) {
		fields["phone"] = "Please provide a valid phone number"
	}
	role := in.Role
	if role == "" {
		role = domain.RoleBroker
	}
	if role != domain.RoleBroker && role != domain.RoleAdmin {
		fields["role"] = "Role must be either broker or admin"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	email := validation.NormalizeEmail(in.Email)
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count > 0 {
		return nil, apperr.Conflict("An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Role:         role,
		IsActive:     true,
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if s.Dispatcher != nil {
		s.Dispatcher.Enqueue(notifications.Welcome(user.Email, user.Name))
	}
	return user, nil
}

// Login verifies credentials, stamps last_login and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.Validation("Email and password are required")
	}
	var user domain.User
	err := s.DB.WithContext(ctx).Where("email = ?", validation.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.Unauthorized("Invalid email or password")
		}
		return nil, "", apperr.Internal(err)
	}
	if !user.IsActive {
		return nil, "", apperr.Unauthorized("Account has been deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", apperr.Unauthorized("Invalid email or password")
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.DB.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to stamp last_login")
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return &user, token, nil
}

func (s *Service) issueToken(user *domain.User) (string, error) {
	ttl := s.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
}

// Authenticate parses a bearer token, rejects revoked tokens and loads the
// user. Inactive accounts are rejected even with a valid token.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*domain.User, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, nil, apperr.Unauthorized("Invalid or expired token")
	}
	if s.Rdb != nil && claims.ID != "" {
		n, err := s.Rdb.Exists(ctx, denylistPrefix+claims.ID).Result()
		if err == nil && n > 0 {
			return nil, nil, apperr.Unauthorized("Token has been revoked")
		}
	}
	var user domain.User
	if err := s.DB.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.Unauthorized("Invalid token - user not found")
		}
		return nil, nil, apperr.Internal(err)
	}
	if !user.IsActive {
		return nil, nil, apperr.Unauthorized("Account has been deactivated")
	}
	return &user, claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if s.Rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.Rdb.Set(ctx, denylistPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

type UpdateProfileInput struct {
	Name  *string
	Email *string
	Phone *string
}

// UpdateProfile patches the caller's own account.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*domain.User, error) {
	var user domain.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		if !validation.LenBetween(*in.Name, 2, 100) {
			return nil, apperr.Validation("Name must be between 2 and 100 characters")
		}
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := validation.NormalizeEmail(*in.Email)
		if !validation.IsValidEmail(email) {
			return nil, apperr.Validation("Please provide a valid email")
		}
		var count int64
		if err := s.DB.WithContext(ctx).Model(&domain.User{}).
			Where("email = ? AND id <> ?", email, userID).Count(&count).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		if count > 0 {
			return nil, apperr.Conflict("An account with this email already exists")
		}
		updates["email"] = email
	}
	if in.Phone != nil {
		if !validation.IsValidPhone(*in.Phone) {
			return nil, apperr.Validation("Please provide a valid phone number")
		}
		updates["phone"] = *in.Phone
	}
	if len(updates) == 0 {
		return &user, nil
	}
	if err := s.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.Validation("New password must be at least 6 characters long")
	}
	var user domain.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperr.Unauthorized("Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost())
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.DB.WithContext(ctx).Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ListUsers returns all accounts (admin).
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

// SetActive toggles an account (admin). Deactivated brokers keep their
// listings; they just cannot sign in.
func (s *Service) SetActive(ctx context.Context, userID uint, active bool) (*domain.User, error) {
	var user domain.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}
	if err := s.DB.WithContext(ctx).Model(&user).Update("is_active", active).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	user.IsActive = active
	return &user, nil
}
