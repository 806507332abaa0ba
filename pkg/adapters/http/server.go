package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/toolhouse/internal/logging"
	"github.com/aretw0/toolhouse/pkg/dice"
	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/registry"
	"github.com/aretw0/toolhouse/pkg/runner"
	"github.com/aretw0/toolhouse/pkg/tools/dicetool"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var openAPISpec []byte

// Tools is the registry surface served under /v1/tools.
type Tools interface {
	List() []domain.Tool
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
	Wrap(name string, fn registry.ToolFunction) registry.ToolFunction
}

// Dice is the dice surface served under /v1/roll and /v1/history.
type Dice interface {
	Roll(ctx context.Context, notation string, numRolls any) (dicetool.Result, error)
	Recent(ctx context.Context, limit int) ([]domain.RollRecord, error)
}

// Server holds the handlers for the JSON API.
type Server struct {
	Tools   Tools
	Dice    Dice
	metrics http.Handler
	logger  *slog.Logger
}

type Option func(*Server)

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler. Requests to documented routes are
// validated against the embedded OpenAPI document before they reach a
// handler.
func NewHandler(tools Tools, dice Dice, opts ...Option) (http.Handler, error) {
	server := &Server{
		Tools:  tools,
		Dice:   dice,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	router, err := loadRouter()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openAPISpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Handle("/metrics", server.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(validateRequests(router, server.logger))
		r.Get("/healthz", server.Health)
		r.Post("/v1/roll", server.Roll)
		r.Get("/v1/history", server.History)
		r.Get("/v1/tools", server.ListTools)
		r.Post("/v1/tools/{name}", server.CallTool)
	})

	return enableCORS(r), nil
}

func loadRouter() (routers.Router, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return legacyrouter.NewRouter(doc)
}

func validateRequests(router routers.Router, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, params, err := router.FindRoute(r)
			if err != nil {
				// Let chi answer 404/405.
				next.ServeHTTP(w, r)
				return
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Warn("Request rejected", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Toolhouse API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type rollRequest struct {
	Notation string `json:"notation"`
	NumRolls any    `json:"num_rolls,omitempty"`
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Roll handles POST /v1/roll.
func (s *Server) Roll(w http.ResponseWriter, r *http.Request) {
	var body rollRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("Roll: Invalid request body", "error", err)
		return
	}

	// Same middleware as roll_dice: sanitising, logging and metrics.
	roll := s.Tools.Wrap(dicetool.RollToolName, func(ctx context.Context, args map[string]any) (any, error) {
		notation, _ := args["notation"].(string)
		return s.Dice.Roll(ctx, notation, args["num_rolls"])
	})
	out, err := roll(r.Context(), map[string]any{"notation": body.Notation, "num_rolls": body.NumRolls})
	if err != nil {
		if rejectedInput(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		s.logger.Error("Roll failed", "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func rejectedInput(err error) bool {
	return dice.IsParseError(err) ||
		errors.Is(err, domain.ErrInvalidArguments) ||
		errors.Is(err, runner.ErrInputTooLarge) ||
		errors.Is(err, runner.ErrInvalidUTF8)
}

// History handles GET /v1/history.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	records, err := s.Dice.Recent(r.Context(), limit)
	switch {
	case errors.Is(err, domain.ErrHistoryDisabled):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrInvalidArguments):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		s.logger.Error("History failed", "error", err)
		return
	}
	if records == nil {
		records = []domain.RollRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

// ListTools handles GET /v1/tools.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Tools.List())
}

// CallTool handles POST /v1/tools/{name}.
func (s *Server) CallTool(w http.ResponseWriter, r *http.Request) {
	var call domain.ToolCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("CallTool: Invalid request body", "error", err)
		return
	}
	call.Name = chi.URLParam(r, "name")

	out, err := s.Tools.Execute(r.Context(), call.Name, call.Args)
	if err != nil {
		s.writeJSON(w, statusFor(err), domain.ToolResult{ID: call.ID, IsError: true, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, domain.ToolResult{ID: call.ID, Result: out})
}

// statusFor maps a tool failure to a status code. Only upstream faults are
// reported as 5xx; everything else a tool rejects is the caller's input.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrToolNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
