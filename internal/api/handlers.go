package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"faqbot/internal/domain"
	"faqbot/internal/service"
)

// Service is the part of the FAQ service the handlers use.
type Service interface {
	Ask(ctx context.Context, query string) domain.Outcome
	TopK(ctx context.Context, query string, k int) []domain.Match
	ReloadFrom(ctx context.Context, src domain.CorpusSource) (int, error)
	Stats() service.Stats
}

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	svc     Service
	source  domain.CorpusSource
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
	}
}

// WithReloadLimit allows perSecond reloads on average with bursts of burst.
// A non-positive rate disables throttling.
func WithReloadLimit(perSecond float64, burst int) Option {
	return func(h *Handler) {
		if perSecond <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// NewHandler creates handlers answering from svc and reloading from source.
func NewHandler(svc Service, source domain.CorpusSource, opts ...Option) *Handler {
	h := &Handler{
		svc:     svc,
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(0.2), 1),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleStatus handles GET / requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Stats()
	sendJSON(w, http.StatusOK, StatusResponse{Status: "ok", Items: st.Items, Version: st.Version})
}

// HandleAsk handles POST /ask requests.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON: " + err.Error()})
		return
	}

	out := h.svc.Ask(r.Context(), req.Query)
	resp := AskResponse{
		Answer:  out.Message,
		Score:   out.Score,
		Outcome: string(out.Kind),
	}
	if out.Answered() {
		resp.Answer = out.Match.Answer
		resp.MatchQuestion = out.Match.Question
	}
	sendJSON(w, http.StatusOK, resp)
}

// HandleTopK handles POST /topk?k=N requests. A missing or non-positive k
// uses the service default.
func (h *Handler) HandleTopK(w http.ResponseWriter, r *http.Request) {
	k := 0
	if v := r.URL.Query().Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "k must be an integer"})
			return
		}
		k = n
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON: " + err.Error()})
		return
	}

	matches := h.svc.TopK(r.Context(), req.Query, k)
	results := make([]RankItem, len(matches))
	for i, m := range matches {
		results[i] = RankItem{ID: m.ID, Question: m.Question, Answer: m.Answer, Score: m.Score}
	}
	sendJSON(w, http.StatusOK, TopKResponse{Results: results})
}

// HandleReload handles POST /reload requests. The live index keeps serving
// when the rebuild fails.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		sendJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "reload already requested recently, try again later"})
		return
	}

	n, err := h.svc.ReloadFrom(r.Context(), h.source)
	if err != nil {
		h.logger.Error("reload failed", "err", err)
		sendJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Reload failed: " + err.Error()})
		return
	}
	sendJSON(w, http.StatusOK, ReloadResponse{Documents: n, Version: h.svc.Stats().Version})
}

// sendJSON writes a JSON response with the given status code.
func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
