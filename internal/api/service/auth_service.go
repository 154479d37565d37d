package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/validation"
	"reviewhub/internal/mail"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error)
	IssueToken(ctx context.Context, username, confirmationCode string) (string, error)
	ValidateToken(tokenString string) (userID string, err error)
}

type authService struct {
	userRepo  repository.UserRepository
	mailer    mail.Mailer
	rdb       *redis.Client // optional, nil disables the resend cooldown
	logger    *slog.Logger
	jwtSecret string
	jwtExpiry time.Duration
	cooldown  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	mailer mail.Mailer,
	rdb *redis.Client,
	logger *slog.Logger,
	jwtSecret string,
	jwtExpiry time.Duration,
	cooldown time.Duration,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		mailer:    mailer,
		rdb:       rdb,
		logger:    logger,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		cooldown:  cooldown,
	}
}

// Signup registers a new user in the pending-confirmation state, or
// re-sends a confirmation code when the exact (username, email) pair is
// already registered. Both paths answer alike so callers cannot probe
// which usernames exist with which emails.
func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error) {
	// Resend path: the exact pair already exists, no new record.
	if user, err := s.userRepo.FindByPair(ctx, req.Username, req.Email); err == nil {
		s.sendConfirmationCode(ctx, user)
		return user, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if ferr := validation.ValidateUsername(req.Username); ferr != nil {
		return nil, ferr
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, validation.NewFieldError("username", "username already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, validation.NewFieldError("email", "email already bound to another username")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendConfirmationCode(ctx, user)
	return user, nil
}

// IssueToken exchanges a confirmation code for a signed access token.
// The wrong code leaves the code valid, so the caller can retry or resend.
func (s *authService) IssueToken(ctx context.Context, username, confirmationCode string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if !CheckConfirmationCode(s.jwtSecret, user, confirmationCode) {
		return "", ErrInvalidCode
	}

	// First token marks the account active; updating last_login also
	// rotates the snapshot so earlier codes stop verifying.
	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.jwtExpiry).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken verifies the bearer token and returns the user id claim.
func (s *authService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// sendConfirmationCode emails the code fire-and-forget. Delivery failure
// never fails the signup request; it is only logged.
func (s *authService) sendConfirmationCode(ctx context.Context, user *models.User) {
	if !s.allowSend(ctx, user.Email) {
		s.logger.Info("confirmation code send skipped by cooldown", "username", user.Username)
		return
	}

	code := ConfirmationCode(s.jwtSecret, user)
	subject := "ReviewHub registration"
	body := fmt.Sprintf(
		"To finish your registration, send a request with username %s "+
			"and confirmation code %s to the /auth/token endpoint.",
		user.Username, code,
	)

	go func() {
		if err := s.mailer.Send(user.Email, subject, body); err != nil {
			s.logger.Error("failed to send confirmation code",
				"username", user.Username, "error", err)
		}
	}()
}

// allowSend applies a per-email cooldown via redis SetNX. Without a redis
// client (or when redis is down) sending is always allowed.
func (s *authService) allowSend(ctx context.Context, email string) bool {
	if s.rdb == nil || s.cooldown <= 0 {
		return true
	}
	key := fmt.Sprintf("signup_cooldown:%s", email)
	ok, err := s.rdb.SetNX(ctx, key, "sent", s.cooldown).Result()
	if err != nil {
		s.logger.Warn("signup cooldown check failed, allowing send", "error", err)
		return true
	}
	return ok
}
