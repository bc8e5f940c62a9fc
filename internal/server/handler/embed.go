package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// EmbedService resolves a "{platform}-{nativeId}" id to a market.
type EmbedService interface {
	Lookup(ctx context.Context, embedID string) (domain.UnifiedMarket, error)
}

// EmbedHandler serves the embeddable market widget payload. Responses are
// public and cacheable by any origin.
type EmbedHandler struct {
	embeds EmbedService
	logger *slog.Logger
}

func NewEmbedHandler(embeds EmbedService, logger *slog.Logger) *EmbedHandler {
	return &EmbedHandler{embeds: embeds, logger: logHandler(logger, "embed")}
}

func setEmbedHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// GetEmbed returns the market for an embed id.
// GET /api/embed/{id}
func (h *EmbedHandler) GetEmbed(w http.ResponseWriter, r *http.Request) {
	setEmbedHeaders(w)
	m, err := h.embeds.Lookup(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to load market")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, m)
}

// Preflight answers CORS preflight requests for the embed endpoint.
// OPTIONS /api/embed/{id}
func (h *EmbedHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	setEmbedHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}
