// internal/profile/service.go

package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/zawajhub/zawaj-backend/internal/common/utils"
)

type Service interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	GetProfiles(ctx context.Context, userIDs []int64) ([]*Profile, error)
	ListMatchable(ctx context.Context) ([]*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository) Service {
	return &service{
		repo:   repo,
		logger: utils.GetLogger(),
	}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *service) GetProfiles(ctx context.Context, userIDs []int64) ([]*Profile, error) {
	return s.repo.GetProfiles(ctx, userIDs)
}

func (s *service) ListMatchable(ctx context.Context) ([]*Profile, error) {
	return s.repo.ListMatchable(ctx)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Madhab != nil {
		p.Madhab = req.Madhab
	}
	if req.PrayerFrequency != nil {
		p.PrayerFrequency = req.PrayerFrequency
	}
	if req.Location != nil {
		p.Location = req.Location
	}
	if req.WillingToRelocate != nil {
		p.WillingToRelocate = *req.WillingToRelocate
	}
	if req.Education != nil {
		p.Education = req.Education
	}
	if req.Profession != nil {
		p.Profession = req.Profession
	}
	if req.MarriageTimeline != nil {
		p.MarriageTimeline = req.MarriageTimeline
	}
	if req.Interests != nil {
		p.Interests = req.Interests
	}
	if req.PreferredMinAge != nil {
		p.PreferredMinAge = req.PreferredMinAge
	}
	if req.PreferredMaxAge != nil {
		p.PreferredMaxAge = req.PreferredMaxAge
	}

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		s.logger.Error("failed to update profile",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	return p, nil
}
