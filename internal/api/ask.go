package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sqlsage/sqlsage/internal/answer"
	"github.com/sqlsage/sqlsage/internal/database"
)

const maxQuestionLength = 4096

type askRequest struct {
	Question string `json:"question"`
}

// outcomeView is the wire shape of an Outcome. Data is capped to the
// configured preview size; row_count and column_count always describe
// the full result.
type outcomeView struct {
	ID            string           `json:"id"`
	Success       bool             `json:"success"`
	UserQuestion  string           `json:"user_question"`
	AgentResponse string           `json:"agent_response,omitempty"`
	SQL           string           `json:"sql_query,omitempty"`
	Data          *database.Result `json:"data,omitempty"`
	RowCount      int              `json:"row_count"`
	ColumnCount   int              `json:"column_count"`
	DataError     string           `json:"data_execution_error,omitempty"`
	Error         string           `json:"error,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	DurationMS    int64            `json:"duration_ms"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Answerer == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "question answering is not configured", false, nil)
		return
	}

	var request askRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}

	question := strings.TrimSpace(request.Question)
	if question == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}
	if len(question) > maxQuestionLength {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_TOO_LONG", "question exceeds the maximum length", false, map[string]any{"max_length": maxQuestionLength})
		return
	}

	outcome := deps.Answerer.Ask(r.Context(), question)

	id := ""
	if deps.History != nil {
		id = deps.History.Append(outcome)
	}
	writeJSON(w, http.StatusOK, viewOf(id, outcome, deps.PreviewRows))
}

func viewOf(id string, outcome answer.Outcome, previewRows int) outcomeView {
	if previewRows <= 0 {
		previewRows = 10
	}
	return outcomeView{
		ID:            id,
		Success:       outcome.Success,
		UserQuestion:  outcome.UserQuestion,
		AgentResponse: outcome.AgentResponse,
		SQL:           outcome.SQL,
		Data:          outcome.Preview(previewRows),
		RowCount:      outcome.RowCount,
		ColumnCount:   outcome.ColumnCount,
		DataError:     outcome.DataError,
		Error:         outcome.Error,
		Timestamp:     outcome.Timestamp,
		DurationMS:    outcome.Duration.Milliseconds(),
	}
}
