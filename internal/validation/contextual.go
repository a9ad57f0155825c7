package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContextualValidator asks the LLM to rate a response's factual accuracy
// against knowledge-base context retrieved for the query.
type ContextualValidator struct {
	generator Generator
	retriever Retriever
	passAt    float64
}

// NewContextualValidator creates a contextual accuracy validator. When the
// input carries no context documents, retriever supplies them.
func NewContextualValidator(generator Generator, retriever Retriever, passThreshold float64) *ContextualValidator {
	return &ContextualValidator{generator: generator, retriever: retriever, passAt: passThreshold}
}

func (v *ContextualValidator) Name() string { return "contextual" }

// accuracyAssessment is the structured reply expected from the rating prompt.
type accuracyAssessment struct {
	AccuracyScore     float64  `json:"accuracy_score"`
	FactualIssues     []string `json:"factual_issues"`
	ConsistencyRating float64  `json:"consistency_rating"`
}

func (v *ContextualValidator) Validate(ctx context.Context, in Input) Result {
	start := time.Now()

	docs := in.ContextDocs
	if docs == nil {
		var err error
		docs, err = v.retriever.Search(ctx, in.Query, 5)
		if err != nil {
			return failedResult(v.Name(), err, "Check LLM and vector store configuration")
		}
	}

	reply, err := v.generator.Generate(ctx, v.buildPrompt(in.Query, in.Response, docs))
	if err != nil {
		return failedResult(v.Name(), err, "Check LLM and vector store configuration")
	}

	assessment := v.parseAssessment(reply)
	score := assessment.AccuracyScore
	confidence := ConfidenceFromScore(score)
	elapsed := time.Since(start)

	return Result{
		Validator:   v.Name(),
		Valid:       score >= v.passAt,
		Score:       score,
		Confidence:  confidence,
		Reasons:     contextualReasons(score, assessment.FactualIssues, confidence),
		Suggestions: contextualSuggestions(score, assessment.FactualIssues, v.passAt),
		Metadata: map[string]any{
			"factual_issues":     assessment.FactualIssues,
			"consistency_rating": assessment.ConsistencyRating,
			"context_docs_count": len(docs),
			"duration_seconds":   elapsed.Seconds(),
		},
		Elapsed: elapsed,
	}
}

// buildPrompt condenses the top three context documents into the rating
// prompt. More context dilutes the judgment without improving it.
func (v *ContextualValidator) buildPrompt(query, response string, docs []Document) string {
	var ctxBlock strings.Builder
	for i, doc := range docs {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&ctxBlock, "Source %d: %s\n\n", i+1, doc.Content)
	}

	return fmt.Sprintf(`Evaluate the accuracy of the following response against the provided context.

Query: %s

Response to evaluate: %s

Context from knowledge base:
%s
Rate the accuracy from 0.0 to 1.0 based on:
1. Factual correctness against the context
2. Consistency with knowledge base information
3. Absence of contradictions

Respond with only a JSON object:
{
    "accuracy_score": <float between 0.0 and 1.0>,
    "factual_issues": [<list of any factual problems>],
    "consistency_rating": <float between 0.0 and 1.0>
}`, query, response, ctxBlock.String())
}

// parseAssessment decodes the LLM reply, falling back to a neutral 0.5 when
// the reply is not valid JSON.
func (v *ContextualValidator) parseAssessment(reply string) accuracyAssessment {
	var a accuracyAssessment
	if err := decodeReply(reply, &a); err != nil {
		zap.L().Warn("validation: unparsable accuracy reply",
			zap.String("reply", truncate(reply, 120)),
		)
		return accuracyAssessment{
			AccuracyScore:     0.5,
			FactualIssues:     []string{"Unable to parse validation response"},
			ConsistencyRating: 0.5,
		}
	}
	if a.AccuracyScore < 0 {
		a.AccuracyScore = 0
	}
	if a.AccuracyScore > 1 {
		a.AccuracyScore = 1
	}
	return a
}

func contextualReasons(score float64, issues []string, confidence Confidence) []string {
	var lead string
	switch confidence {
	case ConfidenceHigh:
		lead = fmt.Sprintf("[CONTEXTUAL] High contextual accuracy: Response well-grounded in course data (score: %.3f)", score)
	case ConfidenceMedium:
		lead = fmt.Sprintf("[CONTEXTUAL] Moderate contextual accuracy with minor issues (score: %.3f)", score)
	case ConfidenceLow:
		lead = fmt.Sprintf("[CONTEXTUAL] Low contextual accuracy with several issues (score: %.3f)", score)
	default:
		lead = fmt.Sprintf("[CONTEXTUAL] Poor contextual accuracy with significant issues (score: %.3f)", score)
	}

	reasons := []string{lead}
	for i, issue := range issues {
		if i >= 2 {
			break
		}
		reasons = append(reasons, "[CONTEXTUAL] Issue: "+issue)
	}
	return reasons
}

func contextualSuggestions(score float64, issues []string, passAt float64) []string {
	var suggestions []string
	if score < passAt {
		suggestions = append(suggestions,
			"Verify information against knowledge base",
			"Remove any unsupported claims",
			"Cross-reference with authoritative sources",
		)
	}
	if len(issues) > 0 {
		suggestions = append(suggestions, "Address factual inconsistencies identified")
	}
	return suggestions
}
