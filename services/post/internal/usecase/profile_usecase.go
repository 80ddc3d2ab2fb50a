package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"akiya-share/pkg/logger"
	"akiya-share/services/post/internal/entity"
	"akiya-share/services/post/internal/repo/persistent"
)

type ProfileUseCase interface {
	GetProfile(ctx context.Context, userID string) (*entity.Profile, error)
	UpsertProfile(ctx context.Context, profile *entity.Profile) (*entity.Profile, error)
}

type profileUseCase struct {
	profileRepo persistent.ProfileRepository
	logger      *logger.Logger
}

func NewProfileUseCase(profileRepo persistent.ProfileRepository, logger *logger.Logger) ProfileUseCase {
	return &profileUseCase{profileRepo: profileRepo, logger: logger}
}

func (uc *profileUseCase) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	profile, err := uc.profileRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpsertProfile writes the caller's own row; profile.ID must already be set
// to the authenticated user.
func (uc *profileUseCase) UpsertProfile(ctx context.Context, profile *entity.Profile) (*entity.Profile, error) {
	profile.Username = strings.TrimSpace(profile.Username)
	if profile.Username == "" {
		return nil, ErrEmptyUsername
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := uc.profileRepo.Upsert(profile); err != nil {
		uc.logger.Error("Failed to upsert profile %s: %v", profile.ID, err)
		return nil, fmt.Errorf("failed to save profile")
	}
	return profile, nil
}
