package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// archivePrefix is where the snapshot archiver writes its objects.
const archivePrefix = "archive/"

// ArchiveReader lists and opens archived snapshot files.
type ArchiveReader interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]domain.BlobInfo, error)
}

// ArchiveHandler exposes the JSONL snapshot archive. Only registered when
// archiving is enabled.
type ArchiveHandler struct {
	blobs  ArchiveReader
	logger *slog.Logger
}

func NewArchiveHandler(blobs ArchiveReader, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{blobs: blobs, logger: logHandler(logger, "archives")}
}

type archiveEntry struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModified"`
}

// ListArchives lists archive files, optionally under a sub-prefix.
// GET /api/archives?prefix=price_snapshots/2025-01
func (h *ArchiveHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	prefix := archivePrefix + strings.TrimPrefix(r.URL.Query().Get("prefix"), "/")
	infos, err := h.blobs.List(r.Context(), prefix)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list archives")
		return
	}
	entries := make([]archiveEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, archiveEntry{
			Path:         strings.TrimPrefix(info.Path, archivePrefix),
			Size:         info.Size,
			LastModified: info.LastModified.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"archives": entries})
}

// GetArchive streams one archive file as newline-delimited JSON.
// GET /api/archives/{path...}
func (h *ArchiveHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	path := pathParam(r, "path")
	if path == "" || strings.Contains(path, "..") {
		writeError(w, http.StatusBadRequest, "invalid archive path")
		return
	}
	body, err := h.blobs.Get(r.Context(), archivePrefix+path)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to read archive")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "handler: archive stream interrupted",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
