// Package server exposes the support agent over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
	dispatchx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/dispatch"
)

type Config struct {
	Addr           string        `envconfig:"ADDR" default:":8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" split_words:"true" default:"30s"`
}

// Retriever mirrors the dispatcher's retrieval contract for the direct FAQ
// search endpoint.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (contractx.RetrievalResult, error)
	Size() int
}

// OrderLookup mirrors the dispatcher's order contract for the direct order
// endpoint.
type OrderLookup interface {
	Lookup(ctx context.Context, orderID string) (*contractx.Order, error)
}

type Server struct {
	dispatcher *dispatchx.Dispatcher
	retriever  Retriever
	orders     OrderLookup
	cfg        Config

	router chi.Router
}

func New(dispatcher *dispatchx.Dispatcher, retriever Retriever, orders OrderLookup, cfg Config) *Server {
	s := &Server{
		dispatcher: dispatcher,
		retriever:  retriever,
		orders:     orders,
		cfg:        cfg,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Post("/chat", s.handleChat)
	r.Post("/reset", s.handleReset)
	r.Get("/health", s.handleHealth)
	r.Get("/api/orders/{orderID}", s.handleGetOrder)
	r.Get("/api/faq", s.handleSearchFAQ)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply      string             `json:"reply"`
	Route      contractx.Route    `json:"route"`
	Envelope   contractx.Envelope `json:"envelope"`
	NeedsHuman bool               `json:"needs_human"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: {\"session_id\":\"...\",\"message\":\"...\"}")
		return
	}

	out, err := s.dispatcher.HandleMessage(r.Context(), req.SessionID, req.Message)
	switch {
	case err == nil:
	case errors.Is(err, dispatchx.ErrInvalidSession), errors.Is(err, dispatchx.ErrInvalidMessage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("chat handling failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:      out.Reply,
		Route:      out.Route,
		Envelope:   out.Envelope,
		NeedsHuman: out.Envelope.NeedsHuman,
	})
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid body: {\"session_id\":\"...\"}")
		return
	}

	if err := s.dispatcher.Reset(r.Context(), req.SessionID); err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("session reset failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"faq_count": s.retriever.Size(),
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	o, err := s.orders.Lookup(r.Context(), orderID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, o)
	case errors.Is(err, contractx.ErrMalformedOrderID):
		writeError(w, http.StatusBadRequest, "order id must match FD followed by 9 digits")
	case errors.Is(err, contractx.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	default:
		log.Error().Err(err).Str("order_id", orderID).Msg("order lookup failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleSearchFAQ(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	results, err := s.retriever.Retrieve(r.Context(), query)
	if err != nil {
		log.Error().Err(err).Msg("faq retrieval failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
