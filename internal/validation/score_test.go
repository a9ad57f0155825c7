package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	t.Run("identical vectors score 1", func(t *testing.T) {
		t.Parallel()
		v := []float64{0.3, 0.4, 0.5}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	})

	t.Run("opposite vectors clamp to 0", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 1}, []float64{-1, -1}))
	})

	t.Run("zero magnitude scores 0", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3}))
		assert.Equal(t, 0.0, CosineSimilarity(nil, []float64{1}))
	})
}

func TestKeywordCoverage(t *testing.T) {
	t.Parallel()

	keywords := []string{"course", "lesson", "module", "curriculum", "instructor",
		"enrollment", "certificate", "learning", "skill", "training"}

	t.Run("thirty percent coverage saturates", func(t *testing.T) {
		t.Parallel()
		// 3 of 10 keywords present.
		text := "This course includes a lesson on every module."
		assert.InDelta(t, 1.0, KeywordCoverage(text, keywords), 1e-9)
	})

	t.Run("no keywords scores 0", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.0, KeywordCoverage("completely unrelated text", keywords))
	})

	t.Run("partial coverage scales linearly", func(t *testing.T) {
		t.Parallel()
		// 1 of 10 keywords: 1 / (10*0.3).
		assert.InDelta(t, 1.0/3.0, KeywordCoverage("a single course", keywords), 1e-9)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		t.Parallel()
		assert.Greater(t, KeywordCoverage("COURSE material", keywords), 0.0)
	})

	t.Run("empty vocabulary gets benefit of the doubt", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0.8, KeywordCoverage("anything", nil))
	})
}

func TestLengthScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		length int
		want   float64
	}{
		{"ideal", 400, 1.0},
		{"short acceptable", 90, 0.8},
		{"long acceptable", 1200, 0.8},
		{"short suboptimal", 30, 0.6},
		{"long suboptimal", 2000, 0.6},
		{"too short", 5, 0.3},
		{"too long", 5000, 0.3},
		{"empty", 0, 0.3},
		{"lower ideal bound", 100, 1.0},
		{"upper ideal bound", 800, 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			response := make([]byte, tc.length)
			for i := range response {
				response[i] = 'x'
			}
			assert.Equal(t, tc.want, LengthScore(string(response)))
		})
	}
}

func TestConfidenceFromScore(t *testing.T) {
	t.Parallel()

	t.Run("cut points", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, ConfidenceHigh, ConfidenceFromScore(0.85))
		assert.Equal(t, ConfidenceMedium, ConfidenceFromScore(0.70))
		assert.Equal(t, ConfidenceLow, ConfidenceFromScore(0.55))
		assert.Equal(t, ConfidenceFailed, ConfidenceFromScore(0.54))
		assert.Equal(t, ConfidenceHigh, ConfidenceFromScore(1.0))
		assert.Equal(t, ConfidenceFailed, ConfidenceFromScore(0.0))
	})

	t.Run("monotonic over full range", func(t *testing.T) {
		t.Parallel()
		rank := map[Confidence]int{
			ConfidenceFailed: 0,
			ConfidenceLow:    1,
			ConfidenceMedium: 2,
			ConfidenceHigh:   3,
		}
		prev := -1
		for s := 0.0; s <= 1.0; s += 0.01 {
			r, ok := rank[ConfidenceFromScore(s)]
			assert.True(t, ok, "unexpected confidence at %f", s)
			assert.GreaterOrEqual(t, r, prev, "confidence regressed at %f", s)
			prev = r
		}
	})
}
