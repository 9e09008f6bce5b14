// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the report pipeline over HTTP. The transport layer
// stays thin: handlers validate, call into the pipeline, and serialize the
// result as JSON.
// Implements: prd007-http-api (R1-R4);
//
//	docs/ARCHITECTURE § HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/brief-engine/internal/compose"
	"github.com/pdiddy/brief-engine/internal/deliver"
	"github.com/pdiddy/brief-engine/internal/generate"
	"github.com/pdiddy/brief-engine/internal/logging"
	"github.com/pdiddy/brief-engine/pkg/types"
)

var logger = logging.New("server")

// LivenessMessage is the GET / body confirming the service is up.
const LivenessMessage = "brief-engine backend is running!"

// InsightSource renders recent-trend bullets for one topic.
type InsightSource interface {
	Insights(ctx context.Context, domain, role string, count int) string
}

// ReportGenerator runs one prompt through the generation engine.
type ReportGenerator interface {
	Generate(ctx context.Context, prompt string) generate.Result
}

// SubscriptionStore appends one subscriber record durably.
type SubscriptionStore interface {
	Append(sub types.Subscription) error
}

// DeliveryChannel sends one email, reporting success as a boolean.
type DeliveryChannel interface {
	Send(to, subject, htmlBody string) bool
}

// Deps carries the server's injected collaborators.
type Deps struct {
	Insights      InsightSource
	Generator     ReportGenerator
	Subscriptions SubscriptionStore
	Channel       DeliveryChannel

	// ArticleCount bounds the trend articles per report; the insight
	// source applies its own default when zero.
	ArticleCount int
}

// Server holds the handler dependencies.
type Server struct {
	deps Deps
}

// New builds a Server around deps.
func New(deps Deps) *Server {
	return &Server{deps: deps}
}

// Handler returns the full route tree wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/generate", s.handleGenerate)
	mux.HandleFunc("/subscribe", s.handleSubscribe)
	return corsMiddleware(logMiddleware(mux))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: LivenessMessage})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	domain := strings.TrimSpace(req.Domain)
	role := strings.TrimSpace(req.Role)
	if domain == "" || role == "" {
		writeError(w, http.StatusBadRequest, "Please provide both 'domain' and 'role'.")
		return
	}

	logger.WithFields(logrus.Fields{"domain": domain, "role": role}).Info("generating report")

	// A dropped connection must not kill a generation already under way;
	// the generator's own timeout is the only bound.
	ctx := context.WithoutCancel(r.Context())

	trendText := s.deps.Insights.Insights(ctx, domain, role, s.deps.ArticleCount)
	prompt := compose.Compose(domain, role, trendText, compose.OnDemand)
	res := s.deps.Generator.Generate(ctx, prompt)

	writeJSON(w, http.StatusOK, generateResponse{Output: res.Report()})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	sub := types.Subscription{
		Email:  strings.TrimSpace(req.Email),
		Phone:  strings.TrimSpace(req.Phone),
		Domain: strings.TrimSpace(req.Domain),
		Role:   strings.TrimSpace(req.Role),
	}

	// Only contact presence is validated. Domain and role may be stored
	// blank; the scheduler skips such records at delivery time.
	if !sub.HasContact() {
		writeError(w, http.StatusBadRequest, "Please provide at least an email or phone number.")
		return
	}

	if err := s.deps.Subscriptions.Append(sub); err != nil {
		logger.WithError(err).Error("storing subscription")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Subscription failed: %v", err))
		return
	}

	if sub.Email == "" {
		writeJSON(w, http.StatusOK, messageResponse{Message: "Subscription successful! (no email provided)"})
		return
	}

	body := deliver.RenderConfirmation(sub.Domain, sub.Role)
	if s.deps.Channel.Send(sub.Email, deliver.ConfirmationSubject, body) {
		writeJSON(w, http.StatusOK, messageResponse{
			Message: fmt.Sprintf("Subscription successful! Confirmation email sent to %s", sub.Email),
		})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Subscription saved, but failed to send email (check logs).",
	})
}

// corsMiddleware answers preflight requests and opens the API to any
// origin; the service fronts a browser client on another host.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

// statusWriter records the response code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type generateRequest struct {
	Domain string `json:"domain"`
	Role   string `json:"role"`
}

type generateResponse struct {
	Output string `json:"output"`
}

type subscribeRequest struct {
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Domain string `json:"domain"`
	Role   string `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
