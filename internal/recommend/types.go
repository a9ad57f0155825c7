// Package recommend generates validated course recommendations. Each
// recommendation pass retrieves candidate courses, asks the LLM for
// reasoning, validates the reply, and regenerates when validation says the
// answer is not good enough.
package recommend

import (
	"github.com/tuanpa2295/filip-hackathon/internal/validation"
)

// Course is one recommended course assembled from retrieved metadata.
type Course struct {
	Title       string         `json:"course_title"`
	Description string         `json:"course_description"`
	URL         string         `json:"course_url"`
	Level       string         `json:"course_level"`
	Duration    string         `json:"course_duration"`
	Instructor  string         `json:"course_instructor"`
	Rating      float64        `json:"course_rating"`
	Price       string         `json:"course_price"`
	Provider    string         `json:"course_provider"`
	Students    string         `json:"course_students"`
	Skills      []MatchedSkill `json:"course_skills"`
	Highlights  []string       `json:"course_highlights"`
}

// MatchedSkill records whether a target skill appears in the course text.
type MatchedSkill struct {
	Name    string `json:"name"`
	Matched bool   `json:"matched"`
}

// GenerationMetadata describes how the final answer was produced.
type GenerationMetadata struct {
	Attempts     int    `json:"attempt_number"`
	Regenerated  bool   `json:"regenerated"`
	FinalAttempt bool   `json:"final_attempt"`
	SessionID    string `json:"session_id"`
	Error        string `json:"error,omitempty"`
}

// Recommendation is the full response returned to callers.
type Recommendation struct {
	Success    bool                   `json:"success"`
	Courses    []Course               `json:"courses"`
	Reasoning  string                 `json:"reasoning"`
	Validation *validation.Aggregated `json:"validation,omitempty"`
	Metadata   GenerationMetadata     `json:"generation_metadata"`
}

// Request describes what the caller wants recommendations for.
type Request struct {
	UserSkills   []string `json:"user_skills"`
	TargetSkills []string `json:"target_skills"`
	MaxResults   int      `json:"max_results"`
	Domain       string   `json:"domain"`
}
