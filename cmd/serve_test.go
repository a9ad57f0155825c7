package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tuanpa2295/filip-hackathon/internal/config"
	"github.com/tuanpa2295/filip-hackathon/internal/recommend"
	"github.com/tuanpa2295/filip-hackathon/internal/validation"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
	cfg = &config.Config{
		Server:     config.ServerConfig{Port: 8080},
		Validation: config.ValidationConfig{DefaultMode: "comprehensive"},
	}
}

// stubAgent records the requests it sees and replays canned responses.
type stubAgent struct {
	rec    *recommend.Recommendation
	recErr error
	agg    validation.Aggregated

	lastRequest   recommend.Request
	lastQuery     string
	lastResponse  string
	lastDomain    string
	lastOverrides *validation.Overrides
}

func (s *stubAgent) Recommend(_ context.Context, req recommend.Request) (*recommend.Recommendation, error) {
	s.lastRequest = req
	return s.rec, s.recErr
}

func (s *stubAgent) ValidateExisting(_ context.Context, query, response, domain string) validation.Aggregated {
	s.lastQuery, s.lastResponse, s.lastDomain = query, response, domain
	return s.agg
}

func routerWith(agent *stubAgent, metrics *validation.Metrics) (http.Handler, *[]validation.Mode) {
	var modes []validation.Mode
	r := buildRouter(func(mode validation.Mode, o *validation.Overrides) recommenderAPI {
		modes = append(modes, mode)
		agent.lastOverrides = o
		return agent
	}, metrics)
	return r, &modes
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := routerWith(&stubAgent{}, validation.NewMetrics())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRecommendations_Success(t *testing.T) {
	agent := &stubAgent{
		rec: &recommend.Recommendation{
			Success:   true,
			Reasoning: "These courses build toward your goals.",
			Courses:   []recommend.Course{{Title: "Go Fundamentals"}},
			Metadata:  recommend.GenerationMetadata{Attempts: 1, FinalAttempt: true},
		},
	}
	router, modes := routerWith(agent, validation.NewMetrics())

	rr := postJSON(t, router, "/api/v1/recommendations", map[string]any{
		"user_skills":   []string{"Python"},
		"target_skills": []string{"Go"},
		"max_results":   3,
	})

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp recommend.Recommendation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Go Fundamentals", resp.Courses[0].Title)

	assert.Equal(t, []string{"Go"}, agent.lastRequest.TargetSkills)
	assert.Equal(t, 3, agent.lastRequest.MaxResults)
	require.Len(t, *modes, 1)
	assert.Equal(t, validation.ModeComprehensive, (*modes)[0])
}

func TestRecommendations_ModeSelection(t *testing.T) {
	agent := &stubAgent{rec: &recommend.Recommendation{Success: true}}
	router, modes := routerWith(agent, validation.NewMetrics())

	rr := postJSON(t, router, "/api/v1/recommendations", map[string]any{
		"target_skills":   []string{"Go"},
		"validation_mode": "strict",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	useValidation := false
	rr = postJSON(t, router, "/api/v1/recommendations", map[string]any{
		"target_skills":  []string{"Go"},
		"use_validation": useValidation,
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, *modes, 2)
	assert.Equal(t, validation.ModeStrict, (*modes)[0])
	assert.Equal(t, validation.ModeDisabled, (*modes)[1], "use_validation=false disables validation")
}

func TestRecommendations_ProfileOverrides(t *testing.T) {
	agent := &stubAgent{rec: &recommend.Recommendation{Success: true}}
	router, _ := routerWith(agent, validation.NewMetrics())

	rr := postJSON(t, router, "/api/v1/recommendations", map[string]any{
		"target_skills": []string{"Go"},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, agent.lastOverrides)

	rr = postJSON(t, router, "/api/v1/recommendations", map[string]any{
		"target_skills":             []string{"Go"},
		"min_validation_score":      0.8,
		"max_regeneration_attempts": 1,
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, agent.lastOverrides)
	require.NotNil(t, agent.lastOverrides.MinValidationScore)
	assert.InDelta(t, 0.8, *agent.lastOverrides.MinValidationScore, 1e-9)
	require.NotNil(t, agent.lastOverrides.MaxRegenerationAttempts)
	assert.Equal(t, 1, *agent.lastOverrides.MaxRegenerationAttempts)
}

func TestRecommendations_MissingTargetSkills(t *testing.T) {
	router, _ := routerWith(&stubAgent{}, validation.NewMetrics())

	rr := postJSON(t, router, "/api/v1/recommendations", map[string]any{
		"user_skills": []string{"Python"},
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "target_skills is required")
}

func TestRecommendations_InvalidBody(t *testing.T) {
	router, _ := routerWith(&stubAgent{}, validation.NewMetrics())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader([]byte("{broken")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestRecommendations_AgentError(t *testing.T) {
	agent := &stubAgent{recErr: assert.AnError}
	router, _ := routerWith(agent, validation.NewMetrics())

	rr := postJSON(t, router, "/api/v1/recommendations", map[string]any{
		"target_skills": []string{"Go"},
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "recommendation failed")
}

func TestValidate_Success(t *testing.T) {
	agent := &stubAgent{
		agg: validation.Aggregated{Valid: true, OverallScore: 0.88, Confidence: validation.ConfidenceHigh},
	}
	router, _ := routerWith(agent, validation.NewMetrics())

	rr := postJSON(t, router, "/api/v1/validate", map[string]any{
		"query":    "find go courses",
		"response": "Here are two structured Go courses with clear learning outcomes.",
		"domain":   "courses",
	})

	assert.Equal(t, http.StatusOK, rr.Code)

	var agg validation.Aggregated
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &agg))
	assert.True(t, agg.Valid)
	assert.InDelta(t, 0.88, agg.OverallScore, 1e-9)

	assert.Equal(t, "find go courses", agent.lastQuery)
	assert.Equal(t, "courses", agent.lastDomain)
}

func TestValidate_MissingFields(t *testing.T) {
	router, _ := routerWith(&stubAgent{}, validation.NewMetrics())

	rr := postJSON(t, router, "/api/v1/validate", map[string]any{"query": "only a query"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "query and response are required")
}

func TestMetricsEndpoints(t *testing.T) {
	metrics := validation.NewMetrics()
	metrics.Record(validation.Aggregated{Valid: true, OverallScore: 0.9})
	router, _ := routerWith(&stubAgent{}, metrics)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var sum validation.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	assert.Equal(t, 1, sum.TotalValidations)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/metrics", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, 0, metrics.Summary().TotalValidations)
}

func TestResolveMode(t *testing.T) {
	assert.Equal(t, validation.ModeComprehensive, resolveMode(""))
	assert.Equal(t, validation.ModeBasic, resolveMode("basic"))
	assert.Equal(t, validation.ModeDisabled, resolveMode("disabled"))
}
