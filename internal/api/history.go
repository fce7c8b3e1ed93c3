package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/sqlsage/sqlsage/internal/answer"
	"github.com/sqlsage/sqlsage/internal/export"
	"github.com/sqlsage/sqlsage/internal/storage"
)

// History is a bounded in-memory log of answered questions. It belongs
// to the presentation layer; the answering pipeline itself stays
// stateless.
type History struct {
	mu      sync.Mutex
	limit   int
	nextSeq int
	entries []HistoryEntry
}

type HistoryEntry struct {
	ID      string
	Outcome answer.Outcome
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 50
	}
	return &History{limit: limit, nextSeq: 1}
}

// Append stores an outcome and returns its assigned identifier. The
// oldest entry is evicted once the limit is reached.
func (h *History) Append(outcome answer.Outcome) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := fmt.Sprintf("ask-%d", h.nextSeq)
	h.nextSeq++
	h.entries = append(h.entries, HistoryEntry{ID: id, Outcome: outcome})
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	return id
}

// List returns entries newest first.
func (h *History) List() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	listed := make([]HistoryEntry, len(h.entries))
	for i, entry := range h.entries {
		listed[len(h.entries)-1-i] = entry
	}
	return listed
}

func (h *History) Get(id string) (HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, entry := range h.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return HistoryEntry{}, false
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

func handleListHistory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.History == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "HISTORY_NOT_CONFIGURED", "history is not configured", false, nil)
		return
	}
	entries := deps.History.List()
	views := make([]outcomeView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, viewOf(entry.ID, entry.Outcome, deps.PreviewRows))
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": views})
}

func handleClearHistory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.History == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "HISTORY_NOT_CONFIGURED", "history is not configured", false, nil)
		return
	}
	deps.History.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"status": "cleared"})
}

func handleExportHistory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.History == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "HISTORY_NOT_CONFIGURED", "history is not configured", false, nil)
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	entry, ok := deps.History.Get(id)
	if !ok {
		writeError(r.Context(), w, http.StatusNotFound, "HISTORY_ENTRY_NOT_FOUND", "history entry was not found", false, map[string]any{"id": id})
		return
	}
	if entry.Outcome.Data == nil {
		writeError(r.Context(), w, http.StatusConflict, "NO_DATA_TO_EXPORT", "history entry has no materialized result", false, map[string]any{"id": id})
		return
	}

	format := strings.TrimSpace(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatCSV
	}
	contentType, ok := export.ContentType(format)
	if !ok {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or parquet", false, map[string]any{"format": format})
		return
	}

	payload, err := export.Render(format, *entry.Outcome.Data)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "EXPORT_FAILED", "failed to render export", true, map[string]any{"details": err.Error()})
		return
	}

	if deps.Archive != nil {
		archiveExport(deps, r, entry.ID, format, contentType, payload)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.ID+"."+format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// archiveExport uploads a copy of the rendered export. Failures are
// logged, not surfaced; the download itself still succeeds.
func archiveExport(deps Dependencies, r *http.Request, id, format, contentType string, payload []byte) {
	key, err := storage.BuildExportPath(id, format)
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.Warn("skip archiving export", "id", id, "error", err)
		}
		return
	}
	if _, err := deps.Archive.Put(r.Context(), key, bytes.NewReader(payload), int64(len(payload)), storage.PutOptions{ContentType: contentType}); err != nil {
		if deps.Logger != nil {
			deps.Logger.Warn("failed to archive export", "key", key, "error", err)
		}
	}
}
