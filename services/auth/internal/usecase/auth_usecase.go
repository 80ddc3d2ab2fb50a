package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"akiya-share/pkg/jwt"
	"akiya-share/pkg/logger"
	"akiya-share/services/auth/internal/entity"
	"akiya-share/services/auth/internal/repo/cache"
	"akiya-share/services/auth/internal/repo/persistent"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken          = errors.New("user with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidResetToken   = errors.New("reset link is invalid or has expired")
	ErrAuthenticationToken = errors.New("a reset token or a signed-in session is required")
)

type AvatarStore interface {
	Upload(ctx context.Context, bucket, key string, body io.ReadSeeker, contentType string, upsert bool) (string, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type Options struct {
	AvatarsBucket string
	ResetTokenTTL time.Duration
}

type AuthUseCase interface {
	SignUp(ctx context.Context, email, username, password string) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	UpdateUser(ctx context.Context, userID string, update entity.UserUpdate) (*entity.User, *entity.Profile, error)
	UploadAvatar(ctx context.Context, userID string, body io.ReadSeeker, ext, contentType string) (string, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, userID, resetToken, password string) error
}

type authUseCase struct {
	userRepo    persistent.UserRepository
	resetTokens cache.ResetTokenRepository
	revoker     TokenRevoker
	avatars     AvatarStore
	jwtService  *jwt.Service
	opts        Options
	logger      *logger.Logger
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	resetTokens cache.ResetTokenRepository,
	revoker TokenRevoker,
	avatars AvatarStore,
	jwtService *jwt.Service,
	opts Options,
	logger *logger.Logger,
) AuthUseCase {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	return &authUseCase{
		userRepo:    userRepo,
		resetTokens: resetTokens,
		revoker:     revoker,
		avatars:     avatars,
		jwtService:  jwtService,
		opts:        opts,
		logger:      logger,
	}
}

// DefaultUsername derives a display name from the local part of an email.
func DefaultUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func (uc *authUseCase) SignUp(ctx context.Context, email, username, password string) (*entity.User, string, error) {
	_, err := uc.userRepo.GetByEmail(email)
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, persistent.ErrNotFound) {
		uc.logger.Error("Failed to look up user: %v", err)
		return nil, "", fmt.Errorf("failed to process registration")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, "", fmt.Errorf("failed to process registration")
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = DefaultUsername(email)
	}

	user := &entity.User{
		Email:    email,
		Username: username,
		Password: string(hashedPassword),
	}
	if err := uc.userRepo.Create(user); err != nil {
		uc.logger.Error("Failed to create user: %v", err)
		return nil, "", fmt.Errorf("failed to create user")
	}

	profile := &entity.Profile{ID: user.ID, Username: user.Username, UpdatedAt: time.Now()}
	if err := uc.userRepo.UpsertProfile(profile); err != nil {
		uc.logger.Error("Failed to create profile for user %s: %v", user.ID, err)
		return nil, "", fmt.Errorf("failed to create profile")
	}

	token, err := uc.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token")
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := uc.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := uc.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token")
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// UpdateUser changes identity metadata and mirrors it into the profile row.
func (uc *authUseCase) UpdateUser(ctx context.Context, userID string, update entity.UserUpdate) (*entity.User, *entity.Profile, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	if update.Username != nil {
		user.Username = strings.TrimSpace(*update.Username)
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}
	if err := uc.userRepo.Update(user); err != nil {
		uc.logger.Error("Failed to update user %s: %v", userID, err)
		return nil, nil, fmt.Errorf("failed to update user")
	}

	profile, err := uc.userRepo.GetProfile(userID)
	if err != nil {
		if !errors.Is(err, persistent.ErrNotFound) {
			return nil, nil, err
		}
		profile = &entity.Profile{ID: userID}
	}
	profile.Username = user.Username
	profile.AvatarURL = user.AvatarURL
	if update.Bio != nil {
		profile.Bio = *update.Bio
	}
	profile.UpdatedAt = time.Now()
	if err := uc.userRepo.UpsertProfile(profile); err != nil {
		uc.logger.Error("Failed to update profile %s: %v", userID, err)
		return nil, nil, fmt.Errorf("failed to update profile")
	}

	user.Password = ""
	return user, profile, nil
}

// UploadAvatar overwrites under a timestamped key and returns a cache-busted URL.
func (uc *authUseCase) UploadAvatar(ctx context.Context, userID string, body io.ReadSeeker, ext, contentType string) (string, error) {
	version := time.Now().Unix()
	key := fmt.Sprintf("%s/%d%s", userID, version, ext)

	url, err := uc.avatars.Upload(ctx, uc.opts.AvatarsBucket, key, body, contentType, true)
	if err != nil {
		uc.logger.Error("Failed to upload avatar: %v", err)
		return "", fmt.Errorf("failed to upload avatar")
	}
	return fmt.Sprintf("%s?v=%d", url, version), nil
}

func (uc *authUseCase) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	if err := uc.revoker.Revoke(ctx, tokenID, expiresAt); err != nil {
		uc.logger.Error("Failed to revoke token: %v", err)
		return fmt.Errorf("failed to sign out")
	}
	return nil
}

// RequestPasswordReset answers the same way whether or not the email is known.
func (uc *authUseCase) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	user, err := uc.userRepo.GetByEmail(email)
	if err != nil {
		uc.logger.Warn("[AUTH] Password reset requested for unknown email")
		return nil
	}

	token := uuid.New().String()
	if err := uc.resetTokens.Save(ctx, token, user.ID, uc.opts.ResetTokenTTL); err != nil {
		uc.logger.Error("Failed to store reset token: %v", err)
		return fmt.Errorf("failed to request password reset")
	}

	uc.logger.Info("[AUTH] Password reset link for user %s: %s", user.ID, resetLink(redirectTo, token))
	return nil
}

func resetLink(redirectTo, token string) string {
	sep := "?"
	if strings.Contains(redirectTo, "?") {
		sep = "&"
	}
	return redirectTo + sep + "token=" + token
}

func (uc *authUseCase) UpdatePassword(ctx context.Context, userID, resetToken, password string) error {
	if resetToken != "" {
		id, err := uc.resetTokens.Consume(ctx, resetToken)
		if err != nil {
			if errors.Is(err, cache.ErrTokenNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		userID = id
	}
	if userID == "" {
		return ErrAuthenticationToken
	}

	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return fmt.Errorf("failed to update password")
	}
	user.Password = string(hashedPassword)
	if err := uc.userRepo.Update(user); err != nil {
		uc.logger.Error("Failed to update password for %s: %v", userID, err)
		return fmt.Errorf("failed to update password")
	}
	return nil
}
