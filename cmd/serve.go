package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tuanpa2295/filip-hackathon/internal/recommend"
	"github.com/tuanpa2295/filip-hackathon/internal/validation"
)

var servePort int

// recommenderAPI is the slice of the agent the HTTP handlers need.
type recommenderAPI interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Recommendation, error)
	ValidateExisting(ctx context.Context, query, response, domain string) validation.Aggregated
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recommendation API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		router := buildRouter(func(mode validation.Mode, o *validation.Overrides) recommenderAPI {
			if o != nil {
				return env.CustomAgent(mode, *o)
			}
			return env.AgentFor(mode)
		}, env.Metrics)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type recommendationRequest struct {
	UserSkills              []string `json:"user_skills"`
	TargetSkills            []string `json:"target_skills"`
	MaxResults              int      `json:"max_results"`
	Domain                  string   `json:"domain"`
	ValidationMode          string   `json:"validation_mode"`
	UseValidation           *bool    `json:"use_validation"`
	MinValidationScore      *float64 `json:"min_validation_score"`
	MaxRegenerationAttempts *int     `json:"max_regeneration_attempts"`
}

// overrides converts the optional per-request knobs into profile overrides,
// or nil when the request sticks to the profile as configured.
func (r recommendationRequest) overrides() *validation.Overrides {
	if r.MinValidationScore == nil && r.MaxRegenerationAttempts == nil {
		return nil
	}
	return &validation.Overrides{
		MinValidationScore:      r.MinValidationScore,
		MaxRegenerationAttempts: r.MaxRegenerationAttempts,
	}
}

type validateRequest struct {
	Query          string `json:"query"`
	Response       string `json:"response"`
	Domain         string `json:"domain"`
	ValidationMode string `json:"validation_mode"`
}

// buildRouter assembles the HTTP API. agentFor resolves the recommendation
// agent for a validation mode, with optional per-request profile overrides.
func buildRouter(agentFor func(validation.Mode, *validation.Overrides) recommenderAPI, metrics *validation.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommendations", func(w http.ResponseWriter, req *http.Request) {
			var body recommendationRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if len(body.TargetSkills) == 0 {
				writeError(w, http.StatusBadRequest, "target_skills is required")
				return
			}

			mode := resolveMode(body.ValidationMode)
			if body.UseValidation != nil && !*body.UseValidation {
				mode = validation.ModeDisabled
			}

			rec, err := agentFor(mode, body.overrides()).Recommend(req.Context(), recommend.Request{
				UserSkills:   body.UserSkills,
				TargetSkills: body.TargetSkills,
				MaxResults:   body.MaxResults,
				Domain:       body.Domain,
			})
			if err != nil {
				zap.L().Error("recommendation request failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "recommendation failed")
				return
			}
			writeJSON(w, http.StatusOK, rec)
		})

		r.Post("/validate", func(w http.ResponseWriter, req *http.Request) {
			var body validateRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.Query == "" || body.Response == "" {
				writeError(w, http.StatusBadRequest, "query and response are required")
				return
			}

			agg := agentFor(resolveMode(body.ValidationMode), nil).
				ValidateExisting(req.Context(), body.Query, body.Response, body.Domain)
			writeJSON(w, http.StatusOK, agg)
		})

		r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, metrics.Summary())
		})

		r.Delete("/metrics", func(w http.ResponseWriter, _ *http.Request) {
			metrics.Reset()
			writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
