// internal/matching/service.go
// Match lifecycle: proposal, dual-sided acceptance, activation

package matching

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zawajhub/zawaj-backend/internal/common/utils"
	"github.com/zawajhub/zawaj-backend/internal/notification"
	"github.com/zawajhub/zawaj-backend/internal/profile"
)

var (
	ErrInvalidPair      = errors.New("invalid pair: ids must differ and both profiles must be eligible")
	ErrDuplicatePair    = errors.New("a match already exists for this pair")
	ErrMatchNotFound    = errors.New("match not found")
	ErrForbidden        = errors.New("user does not own a side of this match")
	ErrAlreadyResponded = errors.New("this side has already responded")
	ErrInvalidDecision  = errors.New("decision must be accepted or rejected")
	ErrMatchNotActive   = errors.New("match is not active")
)

// Notifier is the notification sink consumed on state transitions.
type Notifier interface {
	Notify(ctx context.Context, userID int64, ntype, title, message string, data map[string]interface{}) error
}

// Config carries the generation tuning constants.
type Config struct {
	CompatibilityThreshold float64
	MaxMatchesPerRun       int
}

type Service interface {
	ProposeMatch(ctx context.Context, userAID, userBID int64, createdBy string) (*Match, error)
	RespondToMatch(ctx context.Context, matchID, userID int64, decision string) (*Match, error)
	GetMatch(ctx context.Context, matchID, viewerID int64, isAdmin bool) (*MatchView, error)
	ListUserMatches(ctx context.Context, userID int64) ([]*MatchView, error)
	ListMatches(ctx context.Context, limit, offset int) ([]*MatchView, error)
	CanSendMessage(ctx context.Context, matchID, senderID int64) (*Match, error)
	RunGeneration(ctx context.Context, req *GenerationRequest) (*GenerationSummary, error)
	Stats(ctx context.Context) (map[EffectiveState]int, error)
}

type service struct {
	repo     Repository
	profiles profile.Repository
	scorer   Scorer
	notifier Notifier
	config   Config
	logger   *zap.Logger
}

func NewService(repo Repository, profiles profile.Repository, scorer Scorer, notifier Notifier, cfg Config) Service {
	return &service{
		repo:     repo,
		profiles: profiles,
		scorer:   scorer,
		notifier: notifier,
		config:   cfg,
		logger:   utils.GetLogger(),
	}
}

// ProposeMatch creates a match between two eligible profiles. Manual
// (admin) proposals pass through the same eligibility and duplicate
// checks as generated ones.
func (s *service) ProposeMatch(ctx context.Context, userAID, userBID int64, createdBy string) (*Match, error) {
	if userAID == userBID || userAID <= 0 || userBID <= 0 {
		return nil, ErrInvalidPair
	}

	profA, err := s.profiles.GetProfile(ctx, userAID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, ErrInvalidPair
		}
		return nil, err
	}
	profB, err := s.profiles.GetProfile(ctx, userBID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, ErrInvalidPair
		}
		return nil, err
	}

	if !profA.IsEligible() || !profB.IsEligible() {
		return nil, ErrInvalidPair
	}

	score, reasoning, err := s.scorer.Score(ctx, profA, profB)
	if err != nil {
		return nil, fmt.Errorf("failed to score pair: %w", err)
	}

	return s.createMatch(ctx, profA, profB, score, reasoning, createdBy)
}

// createMatch persists the match and emits the two new_match
// notifications. Notification failures after a committed match are soft
// inconsistencies: logged, not rolled back.
func (s *service) createMatch(ctx context.Context, profA, profB *profile.Profile, score float64, reasoning, createdBy string) (*Match, error) {
	m := &Match{
		UserA:              profA.ID,
		UserB:              profB.ID,
		CompatibilityScore: score,
		Reasoning:          reasoning,
		CreatedBy:          createdBy,
	}

	if err := s.repo.CreateMatch(ctx, m); err != nil {
		return nil, err
	}

	origin := "admin"
	if createdBy == CreatedBySystem {
		origin = "system"
	}
	matchesCreated.WithLabelValues(origin).Inc()
	compatibilityScores.Observe(score)

	s.notifyBoth(ctx, m, notification.TypeNewMatch,
		"New match proposed",
		"You have a new match suggestion. Review their profile and respond.")

	return m, nil
}

// RespondToMatch applies one side's decision. The side update is a
// compare-and-set; a side that is no longer pending fails loudly rather
// than silently succeeding.
func (s *service) RespondToMatch(ctx context.Context, matchID, userID int64, decision string) (*Match, error) {
	var status SideStatus
	switch decision {
	case DecisionAccepted:
		status = SideAccepted
	case DecisionRejected:
		status = SideRejected
	default:
		return nil, ErrInvalidDecision
	}

	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var side string
	switch userID {
	case m.UserA:
		side = "a"
	case m.UserB:
		side = "b"
	default:
		return nil, ErrForbidden
	}

	if err := s.repo.UpdateSideStatus(ctx, matchID, side, status); err != nil {
		if errors.Is(err, errNoRowUpdated) {
			return nil, ErrAlreadyResponded
		}
		return nil, err
	}

	matchResponses.WithLabelValues(decision).Inc()

	// Re-read both sides after the write. The counterpart may have
	// responded concurrently, so activation is decided from the stored
	// pair, never from request context.
	m, err = s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	switch {
	case status == SideRejected:
		// The counterpart hears about a closure once. A rejection
		// landing on a match the counterpart already rejected does not
		// newly close it, so nothing goes out.
		if other, ok := m.Counterpart(userID); ok && m.StatusOf(other) != SideRejected {
			s.notify(ctx, m, other, notification.TypeMatchRejected,
				"Match closed",
				"One of your match suggestions has been closed.")
		}
	case m.EffectiveState() == StateActive:
		s.notifyActivation(ctx, m)
	}

	return m, nil
}

// notifyActivation emits the match_accepted pair exactly once, even when
// both accepts complete concurrently. The activated_notified_at flag is
// claimed with a conditional write; only the claimant sends.
func (s *service) notifyActivation(ctx context.Context, m *Match) {
	claimed, err := s.repo.MarkActivationNotified(ctx, m.ID)
	if err != nil {
		s.logger.Error("failed to claim activation notification",
			zap.Int64("match_id", m.ID),
			zap.Error(err))
		return
	}
	if !claimed {
		return
	}

	matchesActivated.Inc()
	s.notifyBoth(ctx, m, notification.TypeMatchAccepted,
		"It's a match!",
		"You both accepted. You can now start messaging each other.")
}

func (s *service) notifyBoth(ctx context.Context, m *Match, ntype, title, message string) {
	s.notify(ctx, m, m.UserA, ntype, title, message)
	s.notify(ctx, m, m.UserB, ntype, title, message)
}

func (s *service) notify(ctx context.Context, m *Match, userID int64, ntype, title, message string) {
	data := map[string]interface{}{"match_id": m.ID}
	if err := s.notifier.Notify(ctx, userID, ntype, title, message, data); err != nil {
		s.logger.Error("notification emission failed",
			zap.Int64("match_id", m.ID),
			zap.Int64("user_id", userID),
			zap.String("type", ntype),
			zap.Error(err))
	}
}

func (s *service) GetMatch(ctx context.Context, matchID, viewerID int64, isAdmin bool) (*MatchView, error) {
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if _, ok := m.Counterpart(viewerID); !ok && !isAdmin {
		return nil, ErrForbidden
	}

	return NewMatchView(m, viewerID), nil
}

func (s *service) ListUserMatches(ctx context.Context, userID int64) ([]*MatchView, error) {
	matches, err := s.repo.GetMatchesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, NewMatchView(m, userID))
	}

	return views, nil
}

// ListMatches pages through every match without a viewer perspective.
func (s *service) ListMatches(ctx context.Context, limit, offset int) ([]*MatchView, error) {
	matches, err := s.repo.ListMatches(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, NewMatchView(m, 0))
	}

	return views, nil
}

// CanSendMessage is the messaging gate. It re-derives the effective
// state from the stored side statuses on every call; an active match is
// never assumed to still be active.
func (s *service) CanSendMessage(ctx context.Context, matchID, senderID int64) (*Match, error) {
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if _, ok := m.Counterpart(senderID); !ok {
		return nil, ErrForbidden
	}

	if m.EffectiveState() != StateActive {
		return nil, ErrMatchNotActive
	}

	return m, nil
}

func (s *service) Stats(ctx context.Context) (map[EffectiveState]int, error) {
	return s.repo.CountByEffectiveState(ctx)
}
