// internal/matching/scorer.go
// Deterministic weighted compatibility scoring

package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/zawajhub/zawaj-backend/internal/profile"
)

// Scorer estimates the fit between two profiles, returning a score in
// [0,1] and human-readable reasoning.
type Scorer interface {
	Score(ctx context.Context, a, b *profile.Profile) (float64, string, error)
}

// Weights control the contribution of each scoring factor. They are
// expected to sum to 1.0; the final score is capped at 1.0 regardless.
type Weights struct {
	Religious float64
	Location  float64
	AgeFit    float64
	Education float64
	Timeline  float64
	Interests float64
}

// DefaultWeights returns the product-tuned factor weights.
func DefaultWeights() Weights {
	return Weights{
		Religious: 0.30,
		Location:  0.20,
		AgeFit:    0.15,
		Education: 0.15,
		Timeline:  0.10,
		Interests: 0.10,
	}
}

// Madhab agreement carries most of the religious factor, prayer
// closeness the rest.
const (
	madhabPortion = 0.70
	prayerPortion = 0.30
)

// RuleScorer is the deterministic strategy. It is pure: the same two
// profiles always produce the same score.
type RuleScorer struct {
	weights Weights
}

func NewRuleScorer(weights Weights) *RuleScorer {
	return &RuleScorer{weights: weights}
}

// Score computes the weighted sum of all factor sub-scores. Missing
// fields contribute zero for their factor.
func (s *RuleScorer) Score(_ context.Context, a, b *profile.Profile) (float64, string, error) {
	var total float64
	var reasons []string

	if v := s.religiousScore(a, b); v > 0 {
		total += v
		reasons = append(reasons, fmt.Sprintf("religious practice aligns (%.2f)", v))
	}
	if v := s.locationScore(a, b); v > 0 {
		total += v
		reasons = append(reasons, fmt.Sprintf("location works (%.2f)", v))
	}
	if v := s.ageFitScore(a, b); v > 0 {
		total += v
		reasons = append(reasons, fmt.Sprintf("ages fit stated preferences (%.2f)", v))
	}
	if v := s.educationScore(a, b); v > 0 {
		total += v
		reasons = append(reasons, fmt.Sprintf("education levels are close (%.2f)", v))
	}
	if v := s.timelineScore(a, b); v > 0 {
		total += v
		reasons = append(reasons, fmt.Sprintf("marriage timelines are close (%.2f)", v))
	}
	if v := s.interestsScore(a, b); v > 0 {
		total += v
		reasons = append(reasons, fmt.Sprintf("shared interests (%.2f)", v))
	}

	if total > 1.0 {
		total = 1.0
	}

	reasoning := "Few overlapping compatibility signals"
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, "; ")
	}

	return total, reasoning, nil
}

func (s *RuleScorer) religiousScore(a, b *profile.Profile) float64 {
	var score float64

	if a.Madhab != nil && b.Madhab != nil {
		switch {
		case *a.Madhab == *b.Madhab:
			score += s.weights.Religious * madhabPortion
		case *a.Madhab == profile.MadhabOther || *b.Madhab == profile.MadhabOther:
			score += s.weights.Religious * madhabPortion * 0.5
		}
	}

	if a.PrayerFrequency != nil && b.PrayerFrequency != nil {
		sub := s.weights.Religious * prayerPortion
		switch prayerDistance(*a.PrayerFrequency, *b.PrayerFrequency) {
		case 0:
			score += sub
		case 1:
			score += sub * 0.5
		}
	}

	return score
}

// prayerDistance returns the tier gap on the ordered observance scale, or
// -1 if either value is unknown.
func prayerDistance(x, y string) int {
	ranks := map[string]int{
		profile.PrayerAlways:    0,
		profile.PrayerUsually:   1,
		profile.PrayerSometimes: 2,
		profile.PrayerRarely:    3,
	}
	rx, okx := ranks[x]
	ry, oky := ranks[y]
	if !okx || !oky {
		return -1
	}
	if rx > ry {
		return rx - ry
	}
	return ry - rx
}

func (s *RuleScorer) locationScore(a, b *profile.Profile) float64 {
	if a.Location == nil || b.Location == nil {
		return 0
	}
	if strings.EqualFold(*a.Location, *b.Location) {
		return s.weights.Location
	}
	if a.WillingToRelocate || b.WillingToRelocate {
		return s.weights.Location * 0.7
	}
	return 0
}

// ageFitScore awards each side up to half the factor weight when the
// counterpart's age falls inside that side's stated range. The two sides
// are evaluated independently, so this factor is not symmetric.
func (s *RuleScorer) ageFitScore(a, b *profile.Profile) float64 {
	half := s.weights.AgeFit / 2
	var score float64

	if ageInRange(b.Age, a.PreferredMinAge, a.PreferredMaxAge) {
		score += half
	}
	if ageInRange(a.Age, b.PreferredMinAge, b.PreferredMaxAge) {
		score += half
	}

	return score
}

// ageInRange checks an inclusive range. A side with no stated bounds
// contributes nothing; a single bound leaves the other end open.
func ageInRange(age int, min, max *int) bool {
	if min == nil && max == nil {
		return false
	}
	if min != nil && age < *min {
		return false
	}
	if max != nil && age > *max {
		return false
	}
	return true
}

func (s *RuleScorer) educationScore(a, b *profile.Profile) float64 {
	if a.Education == nil || b.Education == nil {
		return 0
	}
	ea := strings.ToLower(strings.TrimSpace(*a.Education))
	eb := strings.ToLower(strings.TrimSpace(*b.Education))
	if ea == "" || eb == "" {
		return 0
	}
	if ea == eb {
		return s.weights.Education
	}
	if adjacentTiers(ea, eb, "phd", "masters") || adjacentTiers(ea, eb, "masters", "bachelors") {
		return s.weights.Education * 0.7
	}
	return 0
}

func (s *RuleScorer) timelineScore(a, b *profile.Profile) float64 {
	if a.MarriageTimeline == nil || b.MarriageTimeline == nil {
		return 0
	}
	ta, tb := *a.MarriageTimeline, *b.MarriageTimeline
	if ta == tb {
		return s.weights.Timeline
	}
	if adjacentTiers(ta, tb, profile.TimelineASAP, profile.TimelineWithin6Month) ||
		adjacentTiers(ta, tb, profile.TimelineWithin6Month, profile.TimelineWithin1Year) {
		return s.weights.Timeline * 0.7
	}
	return 0
}

func adjacentTiers(x, y, tier1, tier2 string) bool {
	return (x == tier1 && y == tier2) || (x == tier2 && y == tier1)
}

// interestsScore is Jaccard similarity of the two interest sets,
// case-insensitive. Empty sets score zero.
func (s *RuleScorer) interestsScore(a, b *profile.Profile) float64 {
	if len(a.Interests) == 0 || len(b.Interests) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a.Interests))
	for _, v := range a.Interests {
		setA[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b.Interests))
	for _, v := range b.Interests {
		setB[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	intersection := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return s.weights.Interests * float64(intersection) / float64(union)
}
