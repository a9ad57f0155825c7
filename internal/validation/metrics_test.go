package validation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggWithScore(score float64, valid bool) Aggregated {
	return Aggregated{
		Valid:        valid,
		OverallScore: score,
		PerValidator: map[string]Result{
			"semantic": {Validator: "semantic", Score: score, Elapsed: 10 * time.Millisecond},
		},
		Metadata: map[string]any{},
		Elapsed:  100 * time.Millisecond,
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	t.Run("empty summary has zero rates", func(t *testing.T) {
		t.Parallel()
		s := NewMetrics().Summary()
		assert.Equal(t, 0, s.TotalValidations)
		assert.Equal(t, 0.0, s.SuccessRate)
		assert.Equal(t, 0.0, s.AverageScore)
		assert.Equal(t, 0.0, s.RegenerationRate)
		assert.Empty(t, s.RecentErrors)
	})

	t.Run("derived rates", func(t *testing.T) {
		t.Parallel()
		m := NewMetrics()
		m.Record(aggWithScore(0.9, true))
		m.Record(aggWithScore(0.3, false))
		m.Record(aggWithScore(0.6, true))
		m.RecordRegeneration()

		s := m.Summary()
		assert.Equal(t, 3, s.TotalValidations)
		assert.InDelta(t, 0.6, s.AverageScore, 1e-9)
		assert.InDelta(t, 2.0/3.0, s.SuccessRate, 1e-9)
		assert.InDelta(t, 1.0/3.0, s.RegenerationRate, 1e-9)
		assert.InDelta(t, 0.1, s.AverageDuration, 1e-9)
	})

	t.Run("per validator accumulation", func(t *testing.T) {
		t.Parallel()
		m := NewMetrics()
		m.Record(aggWithScore(0.8, true))
		m.Record(aggWithScore(0.4, false))

		s := m.Summary()
		require.Contains(t, s.Validators, "semantic")
		assert.Equal(t, 2, s.Validators["semantic"].ValidationCount)
		assert.InDelta(t, 0.6, s.Validators["semantic"].AverageScore, 1e-9)
		assert.InDelta(t, 0.01, s.Validators["semantic"].AverageDuration, 1e-9)
	})

	t.Run("recent errors expose last ten of fifty", func(t *testing.T) {
		t.Parallel()
		m := NewMetrics()
		for i := 0; i < 60; i++ {
			agg := aggWithScore(0.0, false)
			agg.Metadata["error"] = fmt.Sprintf("error-%d", i)
			m.Record(agg)
		}

		s := m.Summary()
		require.Len(t, s.RecentErrors, 10)
		assert.Equal(t, "error-59", s.RecentErrors[9].Error)
		assert.Equal(t, "error-50", s.RecentErrors[0].Error)
	})

	t.Run("reset clears everything", func(t *testing.T) {
		t.Parallel()
		m := NewMetrics()
		m.Record(aggWithScore(0.9, true))
		m.RecordRegeneration()
		m.Reset()

		s := m.Summary()
		assert.Equal(t, 0, s.TotalValidations)
		assert.Equal(t, 0.0, s.RegenerationRate)
		assert.Empty(t, s.Validators)
	})

	t.Run("safe under concurrent sessions", func(t *testing.T) {
		t.Parallel()
		m := NewMetrics()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					m.Record(aggWithScore(0.5, true))
					m.RecordRegeneration()
					_ = m.Summary()
				}
			}()
		}
		wg.Wait()

		s := m.Summary()
		assert.Equal(t, 1000, s.TotalValidations)
		assert.InDelta(t, 1.0, s.RegenerationRate, 1e-9)
	})
}
