package validation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fixed per-validator pass bars. The profile threshold triples parameterize
// reporting bands, but the pass decision itself is pinned per dimension
// (disabled mode excepted, where everything passes).
const (
	semanticPassThreshold   = 0.55
	contextualPassThreshold = 0.60
	domainPassThreshold     = 0.65
	qualityPassThreshold    = 0.65
)

// Aggregated is the combined outcome of one validation pass across all four
// validators.
type Aggregated struct {
	Valid            bool              `json:"is_valid"`
	OverallScore     float64           `json:"overall_score"`
	Confidence       Confidence        `json:"confidence_level"`
	FailedValidators []string          `json:"failed_validations"`
	Reasons          []string          `json:"reasons"`
	Suggestions      []string          `json:"suggestions"`
	PerValidator     map[string]Result `json:"individual_results"`
	Metadata         map[string]any    `json:"validation_metadata"`

	// Elapsed is the wall-clock duration of the whole pass.
	Elapsed time.Duration `json:"-"`
}

// ResultCache stores aggregated outcomes keyed by request fingerprint.
// Implementations swallow their own storage errors; a cache miss and a cache
// failure look the same to the orchestrator.
type ResultCache interface {
	Get(ctx context.Context, key string) (Aggregated, bool)
	Put(ctx context.Context, key string, a Aggregated)
}

// Orchestrator fans a (query, response) pair out to the four validators,
// joins their results and combines them into one weighted decision.
type Orchestrator struct {
	validators []Validator
	cfg        Config
	cache      ResultCache
}

// NewOrchestrator wires the four validators against the given capabilities
// under the profile cfg.
func NewOrchestrator(embedder Embedder, generator Generator, retriever Retriever, cfg Config) *Orchestrator {
	pass := func(def float64) float64 {
		if cfg.Mode == ModeDisabled {
			return 0.01
		}
		return def
	}

	return &Orchestrator{
		validators: []Validator{
			NewSemanticValidator(embedder, pass(semanticPassThreshold)),
			NewContextualValidator(generator, retriever, pass(contextualPassThreshold)),
			NewDomainValidator(generator, pass(domainPassThreshold)),
			NewQualityValidator(generator, pass(qualityPassThreshold)),
		},
		cfg: cfg,
	}
}

// WithCache attaches a result cache, honored when the profile enables
// caching.
func (o *Orchestrator) WithCache(cache ResultCache) *Orchestrator {
	o.cache = cache
	return o
}

// Config returns the active profile.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// ValidateResponse runs all four validators concurrently and combines their
// scores into a weighted decision. It never fails: orchestration-level
// problems (a malformed weight vector) degrade to a synthetic all-failed
// outcome the caller can treat like any other result.
func (o *Orchestrator) ValidateResponse(ctx context.Context, in Input) Aggregated {
	start := time.Now()

	if in.Domain == "" {
		in.Domain = "courses"
	}

	weights := o.cfg.Weights
	if err := checkWeights(weights); err != nil {
		zap.L().Error("validation: orchestration failed", zap.Error(err))
		return systemFailure(err, time.Since(start))
	}

	var cacheKey string
	if o.cache != nil && o.cfg.EnableCaching {
		cacheKey = fingerprint(in, o.cfg.Mode)
		if cached, ok := o.cache.Get(ctx, cacheKey); ok {
			return cached
		}
	}

	// Join-all, no short-circuit: even a certain failure still collects all
	// four results so the caller gets full diagnostics.
	results := make([]Result, len(o.validators))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range o.validators {
		g.Go(func() error {
			vctx := gctx
			if o.cfg.ValidationTimeout > 0 {
				var cancel context.CancelFunc
				vctx, cancel = context.WithTimeout(gctx, o.cfg.ValidationTimeout)
				defer cancel()
			}
			results[i] = v.Validate(vctx, in)
			return nil
		})
	}
	_ = g.Wait() // validators never return errors

	agg := o.combine(in, results, weights)
	agg.Elapsed = time.Since(start)
	agg.Metadata["duration_seconds"] = agg.Elapsed.Seconds()

	o.logOutcome(agg)

	if cacheKey != "" {
		o.cache.Put(ctx, cacheKey, agg)
	}
	return agg
}

// combine is the pure aggregation step: weighted sum, failed-validator set,
// concatenated reasons and de-duplicated suggestions.
func (o *Orchestrator) combine(in Input, results []Result, weights Weights) Aggregated {
	weightFor := map[string]float64{
		"semantic":   weights.Semantic,
		"contextual": weights.Contextual,
		"domain":     weights.Domain,
		"quality":    weights.Quality,
	}

	var overall float64
	var failed []string
	var reasons, suggestions []string
	seen := make(map[string]bool)
	perValidator := make(map[string]Result, len(results))

	for _, r := range results {
		overall += r.Score * weightFor[r.Validator]
		perValidator[r.Validator] = r
		reasons = append(reasons, r.Reasons...)
		for _, s := range r.Suggestions {
			if !seen[s] {
				seen[s] = true
				suggestions = append(suggestions, s)
			}
		}
		if !r.Valid {
			failed = append(failed, r.Validator)
		}
	}

	return Aggregated{
		Valid:            overall >= o.cfg.MinValidationScore,
		OverallScore:     overall,
		Confidence:       ConfidenceFromScore(overall),
		FailedValidators: failed,
		Reasons:          reasons,
		Suggestions:      suggestions,
		PerValidator:     perValidator,
		Metadata: map[string]any{
			"query_length":    len(in.Query),
			"response_length": len(in.Response),
			"domain":          in.Domain,
			"weights":         weights,
			"mode":            o.cfg.Mode,
		},
	}
}

func (o *Orchestrator) logOutcome(agg Aggregated) {
	if !o.cfg.LogResults {
		return
	}
	if agg.Valid {
		zap.L().Info("validation passed",
			zap.Float64("score", agg.OverallScore),
			zap.String("confidence", string(agg.Confidence)),
		)
	} else {
		zap.L().Warn("validation failed",
			zap.Float64("score", agg.OverallScore),
			zap.Strings("failed", agg.FailedValidators),
		)
	}
	if o.cfg.LogDetails {
		zap.L().Debug("validation details",
			zap.Strings("reasons", agg.Reasons),
			zap.Strings("suggestions", agg.Suggestions),
		)
	}
}

// ShouldRegenerate reports whether the outcome warrants another generation
// attempt: overall failure, a dismal score, or three-plus failed dimensions.
// The 0.50 floor and the >=3 count are fixed policy, independent of the
// active profile.
func ShouldRegenerate(agg Aggregated) bool {
	return !agg.Valid ||
		agg.OverallScore < 0.50 ||
		len(agg.FailedValidators) >= 3
}

// priority maps each failed dimension to its canned high-priority suggestion.
var priority = map[string]string{
	"semantic":   "Improve response relevance to the original query",
	"contextual": "Verify information against knowledge base",
	"domain":     "Use more domain-appropriate terminology",
	"quality":    "Enhance response completeness and clarity",
}

// priorityOrder fixes the emission order of canned suggestions.
var priorityOrder = []string{"semantic", "contextual", "domain", "quality"}

// ImprovementSuggestions produces a prioritized guidance list for the next
// generation attempt: one canned suggestion per failed dimension, then up to
// three of the validators' own suggestions.
func ImprovementSuggestions(agg Aggregated) []string {
	failed := make(map[string]bool, len(agg.FailedValidators))
	for _, name := range agg.FailedValidators {
		failed[name] = true
	}

	var out []string
	for _, name := range priorityOrder {
		if failed[name] {
			out = append(out, priority[name])
		}
	}
	for i, s := range agg.Suggestions {
		if i >= 3 {
			break
		}
		out = append(out, s)
	}
	return out
}

// checkWeights rejects weight vectors the aggregation cannot use.
func checkWeights(w Weights) error {
	for _, v := range []float64{w.Semantic, w.Contextual, w.Domain, w.Quality} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("invalid validator weight %v", v)
		}
	}
	if w.Semantic+w.Contextual+w.Domain+w.Quality == 0 {
		return fmt.Errorf("validator weights are all zero")
	}
	return nil
}

// systemFailure is the synthetic outcome returned when orchestration itself
// breaks. Surfaced as data, never as an error.
func systemFailure(err error, elapsed time.Duration) Aggregated {
	return Aggregated{
		Valid:            false,
		OverallScore:     0.0,
		Confidence:       ConfidenceFailed,
		FailedValidators: []string{"all"},
		Reasons:          []string{"Validation system error: " + err.Error()},
		Suggestions:      []string{"Check validation system configuration"},
		PerValidator:     map[string]Result{},
		Metadata: map[string]any{
			"error":            err.Error(),
			"duration_seconds": elapsed.Seconds(),
		},
		Elapsed: elapsed,
	}
}

// fingerprint keys a validation request for the result cache.
func fingerprint(in Input, mode Mode) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", in.Query, in.Response, in.Domain, mode)
	return hex.EncodeToString(h.Sum(nil))
}
