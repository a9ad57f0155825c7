package validation

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Mode names a validation profile.
type Mode string

const (
	ModeBasic         Mode = "basic"
	ModeComprehensive Mode = "comprehensive"
	ModeStrict        Mode = "strict"
	ModeDisabled      Mode = "disabled"
)

// ModeFromString resolves a mode name from request input, ignoring case.
// Unrecognized values fall back to comprehensive with a warning rather than
// failing the request.
func ModeFromString(s string) Mode {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeBasic, ModeComprehensive, ModeStrict, ModeDisabled:
		return m
	case "":
		return ModeComprehensive
	default:
		zap.L().Warn("validation: unknown mode, using comprehensive",
			zap.String("mode", s),
		)
		return ModeComprehensive
	}
}

// Thresholds is a per-validator score triple. Low doubles as the validator's
// pass threshold.
type Thresholds struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
	Low    float64 `json:"low"`
}

// Weights allocates validator contributions to the overall score. The
// defaults sum to 1.0; the aggregation does not require it but the overall
// score only stays in [0,1] when they do.
type Weights struct {
	Semantic   float64 `json:"semantic"`
	Contextual float64 `json:"contextual"`
	Domain     float64 `json:"domain"`
	Quality    float64 `json:"quality"`
}

// DefaultWeights returns the standard weight vector.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.25, Contextual: 0.30, Domain: 0.20, Quality: 0.25}
}

// Config bundles all thresholds and policy knobs for one validation profile.
type Config struct {
	Mode Mode `json:"mode"`

	Weights Weights `json:"weights"`

	Semantic   Thresholds `json:"semantic_thresholds"`
	Contextual Thresholds `json:"contextual_thresholds"`
	Domain     Thresholds `json:"domain_thresholds"`
	Quality    Thresholds `json:"quality_thresholds"`

	// MinValidationScore is the overall pass bar; RegenerationThreshold is
	// the score below which regeneration is strongly favored.
	MinValidationScore    float64 `json:"min_validation_score"`
	RegenerationThreshold float64 `json:"regeneration_threshold"`

	MaxRegenerationAttempts int  `json:"max_regeneration_attempts"`
	EnableRegeneration      bool `json:"enable_regeneration"`

	ValidationTimeout time.Duration `json:"validation_timeout"`

	LogResults bool `json:"log_validation_results"`
	LogDetails bool `json:"log_validation_details"`

	EnableCaching bool          `json:"enable_validation_caching"`
	CacheTTL      time.Duration `json:"cache_ttl"`
}

var (
	profileMu sync.Mutex
	profiles  = map[Mode]Config{}
)

// GetConfig returns the profile for mode, building it on first use and
// caching it for the process lifetime. Construction is a pure function of
// mode, so a first-creation race is harmless.
func GetConfig(mode Mode) Config {
	profileMu.Lock()
	defer profileMu.Unlock()

	cfg, ok := profiles[mode]
	if !ok {
		cfg = buildConfig(mode)
		profiles[mode] = cfg
	}
	return cfg
}

// DefaultConfig returns the comprehensive profile.
func DefaultConfig() Config {
	return GetConfig(ModeComprehensive)
}

// Overrides holds optional per-request deviations from a profile. Nil fields
// keep the profile value.
type Overrides struct {
	MinValidationScore      *float64
	MaxRegenerationAttempts *int
	EnableRegeneration      *bool
	Weights                 *Weights
	ValidationTimeout       *time.Duration
}

// CustomConfig applies overrides on top of base and returns a fresh config.
// Custom configs are request-specific and deliberately not cached.
func CustomConfig(base Config, o Overrides) Config {
	cfg := base
	if o.MinValidationScore != nil {
		cfg.MinValidationScore = *o.MinValidationScore
	}
	if o.MaxRegenerationAttempts != nil {
		cfg.MaxRegenerationAttempts = *o.MaxRegenerationAttempts
	}
	if o.EnableRegeneration != nil {
		cfg.EnableRegeneration = *o.EnableRegeneration
	}
	if o.Weights != nil {
		cfg.Weights = *o.Weights
	}
	if o.ValidationTimeout != nil {
		cfg.ValidationTimeout = *o.ValidationTimeout
	}
	return cfg
}

func buildConfig(mode Mode) Config {
	switch mode {
	case ModeBasic:
		return Config{
			Mode:                    ModeBasic,
			Weights:                 DefaultWeights(),
			Semantic:                Thresholds{High: 0.75, Medium: 0.60, Low: 0.45},
			Contextual:              Thresholds{High: 0.75, Medium: 0.60, Low: 0.50},
			Domain:                  Thresholds{High: 0.70, Medium: 0.55, Low: 0.40},
			Quality:                 Thresholds{High: 0.75, Medium: 0.60, Low: 0.45},
			MinValidationScore:      0.50,
			RegenerationThreshold:   0.40,
			MaxRegenerationAttempts: 1,
			EnableRegeneration:      true,
			ValidationTimeout:       15 * time.Second,
			LogResults:              true,
			EnableCaching:           true,
			CacheTTL:                time.Hour,
		}

	case ModeStrict:
		return Config{
			Mode:                    ModeStrict,
			Weights:                 DefaultWeights(),
			Semantic:                Thresholds{High: 0.90, Medium: 0.80, Low: 0.70},
			Contextual:              Thresholds{High: 0.90, Medium: 0.80, Low: 0.70},
			Domain:                  Thresholds{High: 0.85, Medium: 0.75, Low: 0.65},
			Quality:                 Thresholds{High: 0.90, Medium: 0.80, Low: 0.70},
			MinValidationScore:      0.75,
			RegenerationThreshold:   0.65,
			MaxRegenerationAttempts: 3,
			EnableRegeneration:      true,
			ValidationTimeout:       60 * time.Second,
			LogResults:              true,
			LogDetails:              true,
			EnableCaching:           true,
			CacheTTL:                time.Hour,
		}

	case ModeDisabled:
		// Degenerate profile: thresholds near zero and no regeneration, so
		// validation never blocks generation and call sites stay unchanged.
		return Config{
			Mode:                    ModeDisabled,
			Weights:                 DefaultWeights(),
			Semantic:                Thresholds{High: 0.01, Medium: 0.01, Low: 0.01},
			Contextual:              Thresholds{High: 0.01, Medium: 0.01, Low: 0.01},
			Domain:                  Thresholds{High: 0.01, Medium: 0.01, Low: 0.01},
			Quality:                 Thresholds{High: 0.01, Medium: 0.01, Low: 0.01},
			MinValidationScore:      0.01,
			RegenerationThreshold:   0.01,
			MaxRegenerationAttempts: 0,
			EnableRegeneration:      false,
			ValidationTimeout:       5 * time.Second,
		}

	default: // ModeComprehensive
		return Config{
			Mode:                    ModeComprehensive,
			Weights:                 DefaultWeights(),
			Semantic:                Thresholds{High: 0.85, Medium: 0.70, Low: 0.55},
			Contextual:              Thresholds{High: 0.85, Medium: 0.70, Low: 0.60},
			Domain:                  Thresholds{High: 0.80, Medium: 0.65, Low: 0.50},
			Quality:                 Thresholds{High: 0.85, Medium: 0.70, Low: 0.55},
			MinValidationScore:      0.60,
			RegenerationThreshold:   0.50,
			MaxRegenerationAttempts: 2,
			EnableRegeneration:      true,
			ValidationTimeout:       30 * time.Second,
			LogResults:              true,
			LogDetails:              true,
			EnableCaching:           true,
			CacheTTL:                time.Hour,
		}
	}
}
