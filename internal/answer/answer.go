// Package answer composes the agent, the SQL extractor, and the
// executor into the question answering pipeline. One Ask call is one
// independent pipeline run; the service holds no state across calls.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sqlsage/sqlsage/internal/agent"
	"github.com/sqlsage/sqlsage/internal/database"
	"github.com/sqlsage/sqlsage/internal/extract"
	"github.com/sqlsage/sqlsage/internal/observability"
)

// Executor re-runs the SQL statement extracted from the agent's answer.
// Implemented by *database.DB.
type Executor interface {
	Execute(ctx context.Context, sql string) (database.Result, error)
}

// Outcome is the record returned for every question. Success flips to
// false only when the agent itself fails; an extracted statement that
// fails re-execution keeps Success true and reports through DataError so
// the caller still gets the agent's narrative answer.
type Outcome struct {
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
	Duration      time.Duration    `json:"-"`
}

// Preview returns a bounded copy of the result data for display, or nil
// when no data was materialized.
func (o Outcome) Preview(maxRows int) *database.Result {
	if o.Data == nil {
		return nil
	}
	preview := o.Data.Preview(maxRows)
	return &preview
}

type Service struct {
	agent    agent.Agent
	executor Executor
	logger   *slog.Logger
}

func NewService(a agent.Agent, executor Executor, logger *slog.Logger) (*Service, error) {
	if a == nil {
		return nil, fmt.Errorf("agent is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{agent: a, executor: executor, logger: logger}, nil
}

// Ask runs the full pipeline for one question: elaborate the prompt,
// invoke the agent, extract SQL from the narrative, re-execute it, and
// fold everything into one Outcome.
func (s *Service) Ask(ctx context.Context, question string) Outcome {
	started := time.Now()

	resp, err := s.agent.Invoke(ctx, elaboratePrompt(question))
	if err != nil {
		s.logger.Error("agent invocation failed", "error", err)
		observability.ObserveAsk(observability.AskOutcomeAgentFailed, time.Since(started))
		return Outcome{
			Success:      false,
			UserQuestion: question,
			Error:        err.Error(),
			Timestamp:    time.Now().UTC(),
			Duration:     time.Since(started),
		}
	}
	observability.ObserveAgentIterations(resp.Iterations)

	outcome := Outcome{
		Success:       true,
		UserQuestion:  question,
		AgentResponse: resp.Output,
	}

	sqlText, found := extract.Extract(resp.Output)
	if !found {
		s.logger.Info("no sql statement found in agent answer",
			"question", question,
			"iterations", resp.Iterations,
		)
		observability.ObserveAsk(observability.AskOutcomeNoSQL, time.Since(started))
		outcome.Timestamp = time.Now().UTC()
		outcome.Duration = time.Since(started)
		return outcome
	}
	outcome.SQL = sqlText

	result, err := s.executor.Execute(ctx, sqlText)
	if err != nil {
		// The agent answered; a failed re-execution is reported, not
		// escalated.
		s.logger.Warn("extracted sql failed re-execution",
			"question", question,
			"error", err,
		)
		observability.ObserveAsk(observability.AskOutcomeExecutionFailed, time.Since(started))
		outcome.DataError = err.Error()
		outcome.Timestamp = time.Now().UTC()
		outcome.Duration = time.Since(started)
		return outcome
	}

	outcome.Data = &result
	outcome.RowCount = result.RowCount()
	outcome.ColumnCount = result.ColumnCount()
	outcome.Timestamp = time.Now().UTC()
	outcome.Duration = time.Since(started)

	s.logger.Info("question answered",
		"question", question,
		"iterations", resp.Iterations,
		"tool_calls", resp.ToolCalls,
		"rows", outcome.RowCount,
		"duration", outcome.Duration,
	)
	observability.ObserveAsk(observability.AskOutcomeExecuted, time.Since(started))
	observability.ObserveResultRows(outcome.RowCount)
	return outcome
}

// elaboratePrompt wraps the raw question with a fixed methodology so the
// model inspects the schema before writing SQL and explains its results.
func elaboratePrompt(question string) string {
	return fmt.Sprintf(`You are an expert SQL analyst working with a relational database. Please answer this question: %s

Follow this systematic approach:

1. ANALYZE DATABASE STRUCTURE FIRST:
   - Examine the available tables and their relationships
   - Understand the column names, data types, and constraints
   - Use the database tools to inspect the schema

2. UNDERSTAND THE BUSINESS QUESTION:
   - Parse what the user is asking for specifically
   - Identify which tables and columns are relevant
   - Determine what type of analysis is needed (count, aggregation, filtering, joining)

3. GENERATE PROPER SQL:
   - Write well-structured, efficient SQL queries
   - Include proper WHERE clauses, JOINs, and ORDER BY as needed
   - Handle NULL values and data quality considerations

4. EXECUTE AND INTERPRET RESULTS:
   - Run the SQL query against the database
   - Provide a clear, human-readable interpretation of the results

5. ENSURE DATA QUALITY:
   - Validate that results make business sense
   - Consider edge cases and data anomalies

Be thorough and include the final SQL statement you used so the reader understands both what data was found and how you found it.`, question)
}
