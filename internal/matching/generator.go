// internal/matching/generator.go
// Batch candidate generation: enumerate, filter, score, rank, propose

package matching

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zawajhub/zawaj-backend/internal/profile"
)

type candidate struct {
	profA     *profile.Profile
	profB     *profile.Profile
	score     float64
	reasoning string
}

// RunGeneration scans all matchable profiles, scores every new
// cross-gender pair, and proposes the top matches above the threshold.
// Per-pair failures are skipped and logged; one bad pair never aborts
// the run.
func (s *service) RunGeneration(ctx context.Context, req *GenerationRequest) (*GenerationSummary, error) {
	started := time.Now()
	summary := &GenerationSummary{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}

	threshold := s.config.CompatibilityThreshold
	maxMatches := s.config.MaxMatchesPerRun
	if req != nil {
		if req.Threshold > 0 {
			threshold = req.Threshold
		}
		if req.MaxMatches > 0 {
			maxMatches = req.MaxMatches
		}
	}

	logger := s.logger.With(zap.String("run_id", summary.RunID))
	logger.Info("candidate generation started",
		zap.Float64("threshold", threshold),
		zap.Int("max_matches", maxMatches))

	profiles, err := s.profiles.ListMatchable(ctx)
	if err != nil {
		generationRuns.WithLabelValues("failed").Inc()
		return nil, err
	}
	summary.ProfilesScanned = len(profiles)

	existing, err := s.repo.ExistingPairs(ctx)
	if err != nil {
		generationRuns.WithLabelValues("failed").Inc()
		return nil, err
	}

	candidates := s.scorePairs(ctx, logger, profiles, existing, threshold, summary)

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxMatches {
		candidates = candidates[:maxMatches]
	}

	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.createMatch(ctx, c.profA, c.profB, c.score, c.reasoning, CreatedBySystem); err != nil {
			summary.Failures++
			logger.Warn("failed to create generated match",
				zap.Int64("user_a", c.profA.ID),
				zap.Int64("user_b", c.profB.ID),
				zap.Error(err))
			continue
		}
		summary.MatchesCreated++
	}

	summary.Duration = time.Since(started)
	generationRuns.WithLabelValues("completed").Inc()
	generationDuration.Observe(summary.Duration.Seconds())

	logger.Info("candidate generation finished",
		zap.Int("profiles_scanned", summary.ProfilesScanned),
		zap.Int("pairs_considered", summary.PairsConsidered),
		zap.Int("pairs_scored", summary.PairsScored),
		zap.Int("matches_created", summary.MatchesCreated),
		zap.Int("failures", summary.Failures),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// scorePairs walks every unordered profile pair once, filtering before
// the (potentially network-bound) scoring call.
func (s *service) scorePairs(
	ctx context.Context,
	logger *zap.Logger,
	profiles []*profile.Profile,
	existing map[PairKey]struct{},
	threshold float64,
	summary *GenerationSummary,
) []candidate {
	var candidates []candidate

	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			if ctx.Err() != nil {
				return candidates
			}

			a, b := profiles[i], profiles[j]
			summary.PairsConsidered++

			if !a.IsEligible() || !b.IsEligible() {
				summary.PairsSkipped++
				continue
			}
			if a.Gender == b.Gender {
				summary.PairsSkipped++
				continue
			}
			if _, ok := existing[NewPairKey(a.ID, b.ID)]; ok {
				summary.PairsSkipped++
				continue
			}

			score, reasoning, err := s.scorer.Score(ctx, a, b)
			if err != nil {
				summary.Failures++
				logger.Warn("failed to score pair",
					zap.Int64("user_a", a.ID),
					zap.Int64("user_b", b.ID),
					zap.Error(err))
				continue
			}
			summary.PairsScored++

			if score < threshold {
				continue
			}

			candidates = append(candidates, candidate{
				profA:     a,
				profB:     b,
				score:     score,
				reasoning: reasoning,
			})
		}
	}

	return candidates
}
