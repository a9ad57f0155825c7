package validation

import (
	"context"
	"fmt"
	"time"
)

// Sub-score weights for the quality dimensions.
const (
	completenessWeight  = 0.35
	clarityWeight       = 0.25
	actionabilityWeight = 0.25
	lengthWeight        = 0.15
)

// QualityValidator rates overall response quality as a weighted average of
// completeness, clarity, actionability (each LLM-judged) and a pure length
// heuristic.
type QualityValidator struct {
	generator Generator
	passAt    float64
}

// NewQualityValidator creates a quality assessment validator.
func NewQualityValidator(generator Generator, passThreshold float64) *QualityValidator {
	return &QualityValidator{generator: generator, passAt: passThreshold}
}

func (v *QualityValidator) Name() string { return "quality" }

func (v *QualityValidator) Validate(ctx context.Context, in Input) Result {
	start := time.Now()

	completeness, err := v.judge(ctx, fmt.Sprintf(`Rate how completely the response addresses the query from 0.0 to 1.0.

Query: %s
Response: %s

Consider:
- Does it answer all parts of the question?
- Are key aspects covered?
- Is anything important missing?

Respond with only a number between 0.0 and 1.0.`, in.Query, in.Response))
	if err != nil {
		return failedResult(v.Name(), err, "Check quality assessment configuration")
	}

	clarity, err := v.judge(ctx, fmt.Sprintf(`Rate the clarity and readability of this response from 0.0 to 1.0.

Response: %s

Consider:
- Is the language clear and easy to understand?
- Is the structure logical?
- Are explanations well-organized?

Respond with only a number between 0.0 and 1.0.`, in.Response))
	if err != nil {
		return failedResult(v.Name(), err, "Check quality assessment configuration")
	}

	actionability, err := v.judge(ctx, fmt.Sprintf(`Rate how actionable this response is from 0.0 to 1.0.

Query: %s
Response: %s

Consider:
- Does it provide specific, actionable recommendations?
- Can the user take concrete steps based on this?
- Are there clear next steps?

Respond with only a number between 0.0 and 1.0.`, in.Query, in.Response))
	if err != nil {
		return failedResult(v.Name(), err, "Check quality assessment configuration")
	}

	length := LengthScore(in.Response)

	score := completeness*completenessWeight +
		clarity*clarityWeight +
		actionability*actionabilityWeight +
		length*lengthWeight
	confidence := ConfidenceFromScore(score)
	elapsed := time.Since(start)

	return Result{
		Validator:   v.Name(),
		Valid:       score >= v.passAt,
		Score:       score,
		Confidence:  confidence,
		Reasons:     qualityReasons(score, completeness, clarity, actionability, length, confidence),
		Suggestions: qualitySuggestions(completeness, clarity, actionability, length),
		Metadata: map[string]any{
			"completeness_score":  completeness,
			"clarity_score":       clarity,
			"actionability_score": actionability,
			"length_score":        length,
			"duration_seconds":    elapsed.Seconds(),
		},
		Elapsed: elapsed,
	}
}

// judge runs one sub-score prompt. Unparsable replies fall back to 0.7.
func (v *QualityValidator) judge(ctx context.Context, prompt string) (float64, error) {
	reply, err := v.generator.Generate(ctx, prompt)
	if err != nil {
		return 0, err
	}
	return decodeScore(reply, 0.7), nil
}

func qualityReasons(score, completeness, clarity, actionability, length float64, confidence Confidence) []string {
	var reasons []string
	switch confidence {
	case ConfidenceHigh:
		reasons = append(reasons, fmt.Sprintf("[QUALITY] High quality response with good completeness and clarity (score: %.3f)", score))
	case ConfidenceMedium:
		reasons = append(reasons, fmt.Sprintf("[QUALITY] Moderate quality response with some areas for improvement (score: %.3f)", score))
	default:
		reasons = append(reasons, fmt.Sprintf("[QUALITY] Response quality below acceptable threshold (score: %.3f)", score))
	}

	if completeness < 0.6 {
		reasons = append(reasons, "[QUALITY] Response incompletely addresses the query")
	}
	if clarity < 0.6 {
		reasons = append(reasons, "[QUALITY] Response lacks clarity or organization")
	}
	if actionability < 0.6 {
		reasons = append(reasons, "[QUALITY] Response provides limited actionable guidance")
	}
	if length < 0.6 {
		reasons = append(reasons, "[QUALITY] Response length is inappropriate")
	}
	return reasons
}

func qualitySuggestions(completeness, clarity, actionability, length float64) []string {
	var suggestions []string
	if completeness < 0.6 {
		suggestions = append(suggestions, "Ensure all aspects of the query are addressed")
	}
	if clarity < 0.6 {
		suggestions = append(suggestions, "Improve organization and clarity of explanations")
	}
	if actionability < 0.6 {
		suggestions = append(suggestions, "Provide more specific, actionable recommendations")
	}
	if length < 0.6 {
		suggestions = append(suggestions, "Adjust response length to be more appropriate")
	}
	return suggestions
}
