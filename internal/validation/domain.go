package validation

import (
	"context"
	"fmt"
	"time"
)

// domainKeywords is the fixed vocabulary per domain used by the keyword
// coverage heuristic.
var domainKeywords = map[string][]string{
	"courses": {
		"course", "lesson", "module", "curriculum", "instructor",
		"enrollment", "certificate", "learning", "skill", "training",
	},
	"skills": {
		"skill", "competency", "proficiency", "expertise", "knowledge",
		"ability", "talent", "capability", "experience", "mastery",
	},
}

// DomainValidator combines a keyword-coverage heuristic with an LLM judgment
// of how appropriate the response is for the target domain.
type DomainValidator struct {
	generator Generator
	passAt    float64
}

// NewDomainValidator creates a domain appropriateness validator.
func NewDomainValidator(generator Generator, passThreshold float64) *DomainValidator {
	return &DomainValidator{generator: generator, passAt: passThreshold}
}

func (v *DomainValidator) Name() string { return "domain" }

func (v *DomainValidator) Validate(ctx context.Context, in Input) Result {
	start := time.Now()

	domain := in.Domain
	if domain == "" {
		domain = "courses"
	}

	keywordScore := KeywordCoverage(in.Response, domainKeywords[domain])
	llmScore, err := v.judgeAppropriateness(ctx, in.Query, in.Response, domain)
	if err != nil {
		return failedResult(v.Name(), err, "Check domain configuration")
	}

	// The LLM judgment dominates; keywords only anchor it.
	score := keywordScore*0.3 + llmScore*0.7
	confidence := ConfidenceFromScore(score)
	elapsed := time.Since(start)

	return Result{
		Validator:   v.Name(),
		Valid:       score >= v.passAt,
		Score:       score,
		Confidence:  confidence,
		Reasons:     domainReasons(score, keywordScore, llmScore, domain, confidence),
		Suggestions: domainSuggestions(score, domain, v.passAt),
		Metadata: map[string]any{
			"domain":           domain,
			"keyword_score":    keywordScore,
			"llm_score":        llmScore,
			"duration_seconds": elapsed.Seconds(),
		},
		Elapsed: elapsed,
	}
}

// judgeAppropriateness asks the LLM for a bare 0-1 rating. Unparsable replies
// fall back to 0.6.
func (v *DomainValidator) judgeAppropriateness(ctx context.Context, query, response, domain string) (float64, error) {
	prompt := fmt.Sprintf(`Evaluate how well the following response is appropriate for the %[1]s domain.

Query: %[2]s
Response: %[3]s
Domain: %[1]s

Rate from 0.0 to 1.0 based on:
1. Use of appropriate terminology for %[1]s
2. Relevance to %[1]s context
3. Professional tone suitable for %[1]s

Respond with only a number between 0.0 and 1.0.`, domain, query, response)

	reply, err := v.generator.Generate(ctx, prompt)
	if err != nil {
		return 0, err
	}
	return decodeScore(reply, 0.6), nil
}

func domainReasons(score, keywordScore, llmScore float64, domain string, confidence Confidence) []string {
	switch confidence {
	case ConfidenceHigh:
		return []string{fmt.Sprintf("[DOMAIN] Response contains appropriate %s-related information (score: %.3f)", domain, score)}
	case ConfidenceMedium:
		reasons := []string{fmt.Sprintf("[DOMAIN] Response partially appropriate for %s domain (score: %.3f)", domain, score)}
		if keywordScore < 0.5 {
			reasons = append(reasons, fmt.Sprintf("[DOMAIN] Limited use of %s-specific terminology", domain))
		}
		return reasons
	default:
		reasons := []string{fmt.Sprintf("[DOMAIN] Response lacks %s-specific appropriateness (score: %.3f)", domain, score)}
		if keywordScore < 0.3 {
			reasons = append(reasons, fmt.Sprintf("[DOMAIN] Missing %s-specific terminology", domain))
		}
		if llmScore < 0.5 {
			reasons = append(reasons, fmt.Sprintf("[DOMAIN] Content not well-suited for %s context", domain))
		}
		return reasons
	}
}

func domainSuggestions(score float64, domain string, passAt float64) []string {
	if score >= passAt {
		return nil
	}
	return []string{
		fmt.Sprintf("Include more %s-specific terminology", domain),
		fmt.Sprintf("Focus on %s-relevant aspects", domain),
		fmt.Sprintf("Use professional tone appropriate for %s context", domain),
	}
}
