package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tuanpa2295/filip-hackathon/internal/validation"
)

// Agent generates course recommendations and regenerates them when
// validation rejects the reasoning.
type Agent struct {
	generator    validation.Generator
	retriever    validation.Retriever
	orchestrator *validation.Orchestrator
	metrics      *validation.Metrics
	cfg          validation.Config
}

// NewAgent wires the generation, retrieval, and validation pieces together.
func NewAgent(generator validation.Generator, retriever validation.Retriever, orchestrator *validation.Orchestrator, metrics *validation.Metrics) *Agent {
	return &Agent{
		generator:    generator,
		retriever:    retriever,
		orchestrator: orchestrator,
		metrics:      metrics,
		cfg:          orchestrator.Config(),
	}
}

// Recommend runs the full generate-validate-regenerate loop and returns the
// first attempt that passes validation, or the last attempt when the budget
// runs out.
func (a *Agent) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	start := time.Now()
	sessionID := uuid.New().String()
	log := zap.L().With(zap.String("session_id", sessionID))

	if req.MaxResults <= 0 {
		req.MaxResults = 5
	}
	if req.Domain == "" {
		req.Domain = "courses"
	}

	query := buildQuery(req.UserSkills, req.TargetSkills)
	maxAttempts := a.cfg.MaxRegenerationAttempts + 1

	var lastErr error
	var suggestions []string
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		courses, reasoning, docs, err := a.generateOnce(ctx, query, req, suggestions)
		if err != nil {
			lastErr = err
			log.Error("generation attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if attempt == maxAttempts {
				return errorRecommendation(err, attempt, sessionID), nil
			}
			continue
		}

		agg := a.orchestrator.ValidateResponse(ctx, validation.Input{
			Query:       query,
			Response:    reasoning,
			Domain:      req.Domain,
			ContextDocs: docs,
		})
		if a.metrics != nil {
			a.metrics.Record(agg)
		}

		regenerate := validation.ShouldRegenerate(agg) &&
			attempt < maxAttempts &&
			a.cfg.EnableRegeneration

		if agg.Valid || !regenerate {
			log.Info("recommendation complete",
				zap.Int("attempts", attempt),
				zap.Bool("valid", agg.Valid),
				zap.Float64("score", agg.OverallScore),
				zap.Duration("elapsed", time.Since(start)),
			)
			return &Recommendation{
				Success:    true,
				Courses:    courses,
				Reasoning:  reasoning,
				Validation: &agg,
				Metadata: GenerationMetadata{
					Attempts:     attempt,
					Regenerated:  attempt > 1,
					FinalAttempt: true,
					SessionID:    sessionID,
				},
			}, nil
		}

		if a.metrics != nil {
			a.metrics.RecordRegeneration()
		}
		suggestions = validation.ImprovementSuggestions(agg)
		log.Info("regenerating response",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Strings("suggestions", suggestions),
		)
	}

	// The loop always returns on the last attempt; this is unreachable
	// unless maxAttempts was zero.
	return errorRecommendation(lastErr, maxAttempts, sessionID), nil
}

// ValidateExisting validates an already generated response without any
// regeneration.
func (a *Agent) ValidateExisting(ctx context.Context, query, response, domain string) validation.Aggregated {
	if domain == "" {
		domain = "courses"
	}
	agg := a.orchestrator.ValidateResponse(ctx, validation.Input{
		Query:    query,
		Response: response,
		Domain:   domain,
	})
	if a.metrics != nil {
		a.metrics.Record(agg)
	}
	return agg
}

// generateOnce retrieves candidates, builds structured course payloads and
// asks the LLM for recommendation reasoning.
func (a *Agent) generateOnce(ctx context.Context, query string, req Request, suggestions []string) ([]Course, string, []validation.Document, error) {
	docs, err := a.retriever.Search(ctx, query, req.MaxResults*2)
	if err != nil {
		return nil, "", nil, err
	}
	if len(docs) == 0 {
		return nil, "No relevant courses found in the database.", docs, nil
	}

	courses := a.extractCourses(ctx, docs, req.TargetSkills, req.MaxResults)
	reasoning := a.generateReasoning(ctx, req.UserSkills, req.TargetSkills, courses, suggestions)
	return courses, reasoning, docs, nil
}

func (a *Agent) extractCourses(ctx context.Context, docs []validation.Document, targetSkills []string, maxResults int) []Course {
	if len(docs) > maxResults {
		docs = docs[:maxResults]
	}

	courses := make([]Course, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		lower := strings.ToLower(doc.Content)
		skills := make([]MatchedSkill, 0, len(targetSkills))
		for _, skill := range targetSkills {
			skills = append(skills, MatchedSkill{
				Name:    skill,
				Matched: strings.Contains(lower, strings.ToLower(skill)),
			})
		}

		courses[i] = Course{
			Title:       metaString(doc.Metadata, "title"),
			Description: doc.Content,
			URL:         metaString(doc.Metadata, "url"),
			Level:       metaString(doc.Metadata, "level"),
			Duration:    metaString(doc.Metadata, "duration"),
			Instructor:  metaString(doc.Metadata, "instructors"),
			Rating:      metaFloat(doc.Metadata, "rating"),
			Price:       metaString(doc.Metadata, "price"),
			Provider:    metaString(doc.Metadata, "provider"),
			Students:    metaString(doc.Metadata, "students"),
			Skills:      skills,
		}

		// Highlights come from the LLM, one call per course.
		g.Go(func() error {
			courses[i].Highlights = a.courseHighlights(gctx, docs[i].Content)
			return nil
		})
	}
	_ = g.Wait()
	return courses
}

// courseHighlights asks the LLM for 3-5 learning outcomes. Any failure
// falls back to generic highlights rather than dropping the course.
func (a *Agent) courseHighlights(ctx context.Context, content string) []string {
	prompt := fmt.Sprintf(`Based on the following course information, extract 3-5 key highlights or learning outcomes:

%s

Return only a JSON array of strings, like ["highlight 1", "highlight 2", "highlight 3"].
Focus on specific, actionable learning outcomes.`, content)

	reply, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		zap.L().Warn("failed to extract highlights", zap.Error(err))
		return []string{"Course highlights not available"}
	}

	var highlights []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &highlights); err == nil && len(highlights) > 0 {
		if len(highlights) > 5 {
			highlights = highlights[:5]
		}
		return highlights
	}
	return []string{"Comprehensive course content", "Expert instruction", "Practical skills"}
}

func (a *Agent) generateReasoning(ctx context.Context, userSkills, targetSkills []string, courses []Course, suggestions []string) string {
	userContext := "Beginner level"
	if len(userSkills) > 0 {
		userContext = strings.Join(userSkills, ", ")
	}

	// On regeneration the prompt steers toward what the previous attempt
	// was rejected for.
	improvementNote := ""
	if len(suggestions) > 0 {
		improvementNote = "\n\nFocus on:\n- " + strings.Join(suggestions, "\n- ")
	}

	prompt := fmt.Sprintf(`As an expert learning advisor, provide a clear and comprehensive explanation for these course recommendations.

User's Current Skills: %s
Target Skills to Learn: %s

Recommended Courses:
%s

Provide a well-structured explanation that:
1. Acknowledges the user's current skill level
2. Explains how these courses align with their learning goals
3. Highlights the progression and learning path
4. Mentions key benefits and outcomes
5. Provides actionable next steps

Write in a professional, encouraging tone suitable for learners.
Be specific about how each course contributes to their skill development.%s`,
		userContext, strings.Join(targetSkills, ", "), formatCourses(courses), improvementNote)

	reply, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		zap.L().Error("failed to generate reasoning", zap.Error(err))
		return fmt.Sprintf("Based on your interest in %s, I've selected these courses to help you develop the necessary skills effectively.",
			strings.Join(targetSkills, ", "))
	}
	return strings.TrimSpace(reply)
}

func formatCourses(courses []Course) string {
	var sb strings.Builder
	for i, c := range courses {
		fmt.Fprintf(&sb, "Course %d: %s\n- Level: %s\n- Duration: %s\n- Provider: %s\n- Description: %s\n\n",
			i+1, c.Title, c.Level, c.Duration, c.Provider, truncate(c.Description, 200))
	}
	return sb.String()
}

func buildQuery(userSkills, targetSkills []string) string {
	userContext := "for beginners"
	if len(userSkills) > 0 {
		userContext = "with background in " + strings.Join(userSkills, ", ")
	}
	return fmt.Sprintf("Find relevant courses for learning %s %s. Focus on practical, well-rated courses that provide clear learning outcomes.",
		strings.Join(targetSkills, ", "), userContext)
}

func errorRecommendation(err error, attempts int, sessionID string) *Recommendation {
	msg := "Exceeded maximum generation attempts"
	if err != nil {
		msg = err.Error()
	}
	return &Recommendation{
		Success:   false,
		Courses:   []Course{},
		Reasoning: "Failed to generate valid recommendation after multiple attempts.",
		Validation: &validation.Aggregated{
			Valid:      false,
			Confidence: validation.ConfidenceFailed,
			Reasons:    []string{"Generation error: " + msg},
			Suggestions: []string{
				"Check system configuration",
			},
		},
		Metadata: GenerationMetadata{
			Attempts:     attempts,
			Regenerated:  attempts > 1,
			FinalAttempt: true,
			SessionID:    sessionID,
			Error:        msg,
		},
	}
}

func metaString(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

func metaFloat(meta map[string]any, key string) float64 {
	if v, ok := meta[key].(float64); ok {
		return v
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
