package matching

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zawajhub/zawaj-backend/internal/profile"
)

func TestFallbackScorerUsesPrimaryWhenHealthy(t *testing.T) {
	primary := fixedScorer(0.9)
	fallback := fixedScorer(0.1)
	s := NewFallbackScorer(primary, fallback)

	score, reasoning, err := s.Score(context.Background(), fullProfile(1, profile.GenderMale), fullProfile(2, profile.GenderFemale))
	require.NoError(t, err)
	assert.InDelta(t, 0.9, score, 0.0001)
	assert.Equal(t, "fixed", reasoning)
}

func TestFallbackScorerFallsBackSilently(t *testing.T) {
	primary := scorerFunc(func(_, _ *profile.Profile) (float64, string, error) {
		return 0, "", errors.New("upstream timeout")
	})
	rule := NewRuleScorer(DefaultWeights())
	s := NewFallbackScorer(primary, rule)

	a := fullProfile(1, profile.GenderMale)
	b := fullProfile(2, profile.GenderFemale)

	score, reasoning, err := s.Score(context.Background(), a, b)
	require.NoError(t, err)

	// The result matches what the rule scorer produces directly.
	want, _, _ := rule.Score(context.Background(), a, b)
	assert.InDelta(t, want, score, 0.0001)
	assert.True(t, strings.HasPrefix(reasoning, "[rule-based] "))
}

func TestAIScorerEndpoint(t *testing.T) {
	s := NewAIScorer(AIScorerConfig{
		APIKey: "secret",
		APIURL: "https://generativelanguage.googleapis.com/v1beta/",
		Model:  "gemini-pro",
	}, nil)

	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent?key=secret",
		s.endpoint())
}

func TestParseVerdict(t *testing.T) {
	body := []byte(`{
		"candidates": [{
			"content": {"parts": [{"text": "Here is my assessment:\n{\"score\": 0.72, \"reasoning\": \"Strong religious alignment.\"}\nHope that helps."}]}
		}]
	}`)

	score, reasoning, err := parseVerdict(body)
	require.NoError(t, err)
	assert.InDelta(t, 0.72, score, 0.0001)
	assert.Equal(t, "Strong religious alignment.", reasoning)
}

func TestParseVerdictRejectsBadPayloads(t *testing.T) {
	cases := map[string][]byte{
		"no candidates":      []byte(`{"candidates": []}`),
		"no json in text":    []byte(`{"candidates": [{"content": {"parts": [{"text": "just prose"}]}}]}`),
		"score out of range": []byte(`{"candidates": [{"content": {"parts": [{"text": "{\"score\": 1.5, \"reasoning\": \"x\"}"}]}}]}`),
		"not json at all":    []byte(`<html>error</html>`),
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseVerdict(body)
			assert.Error(t, err)
		})
	}
}
