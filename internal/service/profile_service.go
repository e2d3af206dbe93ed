package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"jobsy/internal/domain"
	"jobsy/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileInvalid  = errors.New("profile invalid")
)

// ProfileService expone el almacen de perfiles por usuario.
type ProfileService struct {
	logger   *zap.Logger
	profiles repository.ProfileRepository
	now      func() time.Time
}

func NewProfileService(logger *zap.Logger, profiles repository.ProfileRepository) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		logger:   logger,
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProfileService) Find(ctx context.Context, userID string) (domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return profile, nil
}

func (s *ProfileService) Create(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	if strings.TrimSpace(profile.ID) == "" || !profile.UserType.Valid() {
		return domain.Profile{}, ErrProfileInvalid
	}
	now := s.now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Profile{}, ErrProfileExists
		}
		return domain.Profile{}, err
	}
	s.logger.Info("profile created", zap.String("user_id", profile.ID), zap.String("user_type", string(profile.UserType)))
	return profile, nil
}

// Update aplica el patch sin tocar id ni user_type.
func (s *ProfileService) Update(ctx context.Context, userID string, patch domain.ProfilePatch) (domain.Profile, error) {
	current, err := s.Find(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	current.Apply(patch)
	current.UpdatedAt = s.now()
	if err := s.profiles.Update(ctx, current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return current, nil
}
