package validation

import (
	"sync"
	"time"
)

const (
	recentErrorCap    = 50
	recentErrorExpose = 10
)

// RecordedError is one entry in the recent-error ring.
type RecordedError struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidatorSummary is the derived per-validator view in a metrics summary.
type ValidatorSummary struct {
	AverageScore    float64 `json:"average_score"`
	AverageDuration float64 `json:"average_duration"`
	ValidationCount int     `json:"validation_count"`
}

// Summary is a consistent snapshot of the collected metrics with derived
// rates. All rates are zero when nothing has been recorded.
type Summary struct {
	TotalValidations int                         `json:"total_validations"`
	SuccessRate      float64                     `json:"success_rate"`
	AverageScore     float64                     `json:"average_score"`
	AverageDuration  float64                     `json:"average_duration"`
	RegenerationRate float64                     `json:"regeneration_rate"`
	Validators       map[string]ValidatorSummary `json:"validator_performances"`
	RecentErrors     []RecordedError             `json:"recent_errors"`
}

type validatorStats struct {
	count         int
	totalScore    float64
	totalDuration time.Duration
}

// Metrics accumulates validation outcomes for the process lifetime. All
// mutation and reading happens under one mutex; it is safe for concurrent
// validation sessions. Create one instance at startup and share the handle.
type Metrics struct {
	mu sync.Mutex

	total         int
	successes     int
	failures      int
	regenerations int
	totalScore    float64
	totalDuration time.Duration
	perValidator  map[string]*validatorStats
	recentErrors  []RecordedError
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{perValidator: make(map[string]*validatorStats)}
}

// Record folds one aggregated outcome into the counters, including each
// validator's individual score and duration.
func (m *Metrics) Record(agg Aggregated) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	if agg.Valid {
		m.successes++
	} else {
		m.failures++
	}
	m.totalScore += agg.OverallScore
	m.totalDuration += agg.Elapsed

	for name, r := range agg.PerValidator {
		stats, ok := m.perValidator[name]
		if !ok {
			stats = &validatorStats{}
			m.perValidator[name] = stats
		}
		stats.count++
		stats.totalScore += r.Score
		stats.totalDuration += r.Elapsed
	}

	if errMsg, ok := agg.Metadata["error"].(string); ok && errMsg != "" {
		m.recentErrors = append(m.recentErrors, RecordedError{
			Error:     errMsg,
			Timestamp: time.Now().UTC(),
		})
		if len(m.recentErrors) > recentErrorCap {
			m.recentErrors = m.recentErrors[len(m.recentErrors)-recentErrorCap:]
		}
	}
}

// RecordRegeneration counts one regeneration event.
func (m *Metrics) RecordRegeneration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regenerations++
}

// Summary computes the derived rates over everything recorded so far.
func (m *Metrics) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{
		TotalValidations: m.total,
		Validators:       make(map[string]ValidatorSummary, len(m.perValidator)),
		RecentErrors:     []RecordedError{},
	}

	if m.total > 0 {
		s.SuccessRate = float64(m.successes) / float64(m.total)
		s.AverageScore = m.totalScore / float64(m.total)
		s.AverageDuration = m.totalDuration.Seconds() / float64(m.total)
		s.RegenerationRate = float64(m.regenerations) / float64(m.total)
	}

	for name, stats := range m.perValidator {
		vs := ValidatorSummary{ValidationCount: stats.count}
		if stats.count > 0 {
			vs.AverageScore = stats.totalScore / float64(stats.count)
			vs.AverageDuration = stats.totalDuration.Seconds() / float64(stats.count)
		}
		s.Validators[name] = vs
	}

	if n := len(m.recentErrors); n > 0 {
		start := n - recentErrorExpose
		if start < 0 {
			start = 0
		}
		s.RecentErrors = append(s.RecentErrors, m.recentErrors[start:]...)
	}

	return s
}

// Reset clears all state. Operator action, not part of normal flow.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = 0
	m.successes = 0
	m.failures = 0
	m.regenerations = 0
	m.totalScore = 0
	m.totalDuration = 0
	m.perValidator = make(map[string]*validatorStats)
	m.recentErrors = nil
}
