// internal/matching/ai.go
// AI-backed compatibility scoring with mandatory deterministic fallback

package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/zawajhub/zawaj-backend/internal/common/utils"
	"github.com/zawajhub/zawaj-backend/internal/profile"
)

var errRateLimited = errors.New("ai scoring rate limit reached")

// AIScorerConfig configures the external text-generation call. APIURL
// is the base of the generative language API; the model name is
// interpolated into the final endpoint.
type AIScorerConfig struct {
	APIKey    string
	APIURL    string
	Model     string
	Timeout   time.Duration
	RateLimit int
	RateWait  time.Duration
}

// AIScorer asks an external text-generation service for a score and
// reasoning. It is never used directly by the generator; it is always
// wrapped in a FallbackScorer.
type AIScorer struct {
	config     AIScorerConfig
	httpClient *http.Client
	limiter    *rateLimiter
}

func NewAIScorer(cfg AIScorerConfig, redisClient *redis.Client) *AIScorer {
	return &AIScorer{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    newRateLimiter(redisClient, cfg.RateLimit, cfg.RateWait),
	}
}

// Request/response shapes for the generative language API.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type aiVerdict struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

func (s *AIScorer) Score(ctx context.Context, a, b *profile.Profile) (float64, string, error) {
	if err := s.limiter.allow(ctx); err != nil {
		return 0, "", err
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(a, b)}}}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal ai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("failed to build ai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("ai call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read ai response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("ai call returned status %d", resp.StatusCode)
	}

	return parseVerdict(body)
}

// endpoint builds the generateContent URL for the configured model.
func (s *AIScorer) endpoint() string {
	base := strings.TrimSuffix(s.config.APIURL, "/")
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, s.config.Model, s.config.APIKey)
}

func buildPrompt(a, b *profile.Profile) string {
	var sb strings.Builder
	sb.WriteString("You are a matchmaking assistant for a Muslim marriage platform. ")
	sb.WriteString("Assess the compatibility of the two candidates below and respond with ONLY a JSON object ")
	sb.WriteString(`in the form {"score": <number between 0 and 1>, "reasoning": "<one or two sentences>"}.`)
	sb.WriteString("\n\nCandidate 1:\n")
	writeProfile(&sb, a)
	sb.WriteString("\nCandidate 2:\n")
	writeProfile(&sb, b)
	return sb.String()
}

func writeProfile(sb *strings.Builder, p *profile.Profile) {
	fmt.Fprintf(sb, "- Age: %d\n", p.Age)
	fmt.Fprintf(sb, "- Gender: %s\n", p.Gender)
	if p.Madhab != nil {
		fmt.Fprintf(sb, "- Madhab: %s\n", *p.Madhab)
	}
	if p.PrayerFrequency != nil {
		fmt.Fprintf(sb, "- Prayer frequency: %s\n", *p.PrayerFrequency)
	}
	if p.Location != nil {
		fmt.Fprintf(sb, "- Location: %s (willing to relocate: %t)\n", *p.Location, p.WillingToRelocate)
	}
	if p.Education != nil {
		fmt.Fprintf(sb, "- Education: %s\n", *p.Education)
	}
	if p.Profession != nil {
		fmt.Fprintf(sb, "- Profession: %s\n", *p.Profession)
	}
	if p.MarriageTimeline != nil {
		fmt.Fprintf(sb, "- Marriage timeline: %s\n", *p.MarriageTimeline)
	}
	if len(p.Interests) > 0 {
		fmt.Fprintf(sb, "- Interests: %s\n", strings.Join(p.Interests, ", "))
	}
	if p.PreferredMinAge != nil || p.PreferredMaxAge != nil {
		min, max := 18, 100
		if p.PreferredMinAge != nil {
			min = *p.PreferredMinAge
		}
		if p.PreferredMaxAge != nil {
			max = *p.PreferredMaxAge
		}
		fmt.Fprintf(sb, "- Preferred partner age: %d to %d\n", min, max)
	}
}

// parseVerdict extracts the JSON object from the model's text output.
// Models wrap JSON in prose or code fences, so everything outside the
// outermost braces is discarded.
func parseVerdict(body []byte) (float64, string, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, "", fmt.Errorf("failed to decode ai response: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return 0, "", errors.New("ai response contained no candidates")
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return 0, "", errors.New("no JSON object in ai response")
	}

	var verdict aiVerdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &verdict); err != nil {
		return 0, "", fmt.Errorf("failed to parse ai verdict: %w", err)
	}

	if verdict.Score < 0 || verdict.Score > 1 {
		return 0, "", fmt.Errorf("ai score %.2f outside [0,1]", verdict.Score)
	}
	if verdict.Reasoning == "" {
		verdict.Reasoning = "AI assessment"
	}

	return verdict.Score, verdict.Reasoning, nil
}

// rateLimiter is a fixed-window counter in redis shared across instances.
// A nil redis client disables limiting.
type rateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func newRateLimiter(client *redis.Client, limit int, window time.Duration) *rateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimiter{client: client, limit: limit, window: window}
}

func (l *rateLimiter) allow(ctx context.Context) error {
	if l.client == nil || l.limit <= 0 {
		return nil
	}

	key := fmt.Sprintf("matching:ai_calls:%d", time.Now().Unix()/int64(l.window.Seconds()))
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		// Redis being down must not block scoring; the fallback path
		// absorbs any downstream AI failures anyway.
		return nil
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	if count > int64(l.limit) {
		return errRateLimited
	}

	return nil
}

// FallbackScorer tries the primary strategy and silently falls back to
// the secondary on any error. It never returns an error itself.
type FallbackScorer struct {
	primary  Scorer
	fallback Scorer
	logger   *zap.Logger
}

func NewFallbackScorer(primary, fallback Scorer) *FallbackScorer {
	return &FallbackScorer{
		primary:  primary,
		fallback: fallback,
		logger:   utils.GetLogger(),
	}
}

func (s *FallbackScorer) Score(ctx context.Context, a, b *profile.Profile) (float64, string, error) {
	score, reasoning, err := s.primary.Score(ctx, a, b)
	if err == nil {
		return score, reasoning, nil
	}

	scoringFallbacks.Inc()
	if !errors.Is(err, errRateLimited) {
		s.logger.Warn("primary scorer failed, using rule-based fallback",
			zap.Int64("user_a", a.ID),
			zap.Int64("user_b", b.ID),
			zap.Error(err))
	}

	score, reasoning, ferr := s.fallback.Score(ctx, a, b)
	if ferr != nil {
		// The rule scorer never errors, but keep the contract honest.
		return 0, "scoring unavailable", nil
	}

	return score, "[rule-based] " + reasoning, nil
}
