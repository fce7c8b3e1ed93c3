package api

import (
	"net/http"
	"strconv"
	"strings"
)

const maxSampleRows = 100

func handleListTables(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Tables == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TABLES_NOT_CONFIGURED", "table browsing is not configured", false, nil)
		return
	}
	names, err := deps.Tables.TableNames(r.Context())
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to list tables", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": names})
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Tables == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TABLES_NOT_CONFIGURED", "table browsing is not configured", false, nil)
		return
	}
	info, err := deps.Tables.TableInfo(r.Context())
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to describe schema", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schema": info})
}

func handleSampleRows(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Tables == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TABLES_NOT_CONFIGURED", "table browsing is not configured", false, nil)
		return
	}
	table := strings.TrimSpace(r.PathValue("table"))
	if table == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "TABLE_REQUIRED", "table name is required", false, nil)
		return
	}

	limit := deps.SampleRows
	if limit <= 0 {
		limit = 5
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer", false, nil)
			return
		}
		limit = parsed
	}
	if limit > maxSampleRows {
		limit = maxSampleRows
	}

	result, err := deps.Tables.SampleRows(r.Context(), table, limit)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "SAMPLE_FAILED", "failed to sample table", false, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"table":   table,
		"columns": result.Columns,
		"rows":    result.Rows,
	})
}
