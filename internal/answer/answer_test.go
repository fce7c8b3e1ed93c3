package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sqlsage/sqlsage/internal/agent"
	"github.com/sqlsage/sqlsage/internal/database"
)

type fakeAgent struct {
	output  string
	err     error
	prompts []string
}

func (f *fakeAgent) Invoke(_ context.Context, prompt string) (agent.Response, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return agent.Response{}, f.err
	}
	return agent.Response{Output: f.output, Iterations: 1}, nil
}

type fakeExecutor struct {
	result   database.Result
	err      error
	executed []string
}

func (f *fakeExecutor) Execute(_ context.Context, sql string) (database.Result, error) {
	f.executed = append(f.executed, sql)
	if f.err != nil {
		return database.Result{}, f.err
	}
	return f.result, nil
}

func newService(t *testing.T, a agent.Agent, executor Executor) *Service {
	t.Helper()
	svc, err := NewService(a, executor, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestAskExecutesExtractedSQL(t *testing.T) {
	a := &fakeAgent{output: "There is one row.\n```sql\nSELECT 1;\n```"}
	executor := &fakeExecutor{
		result: database.Result{Columns: []string{"?column?"}, Rows: [][]any{{int64(1)}}},
	}
	svc := newService(t, a, executor)

	outcome := svc.Ask(context.Background(), "select one")
	if !outcome.Success {
		t.Fatalf("Success = false, error = %q", outcome.Error)
	}
	if outcome.UserQuestion != "select one" {
		t.Fatalf("UserQuestion = %q", outcome.UserQuestion)
	}
	if outcome.SQL != "SELECT 1;" {
		t.Fatalf("SQL = %q", outcome.SQL)
	}
	if outcome.RowCount != 1 || outcome.ColumnCount != 1 {
		t.Fatalf("counts = %d x %d, want 1 x 1", outcome.RowCount, outcome.ColumnCount)
	}
	if outcome.Data == nil || outcome.DataError != "" {
		t.Fatalf("Data = %v, DataError = %q", outcome.Data, outcome.DataError)
	}
	if outcome.Timestamp.IsZero() {
		t.Fatal("Timestamp not stamped")
	}
	if len(executor.executed) != 1 || executor.executed[0] != "SELECT 1;" {
		t.Fatalf("executed = %v", executor.executed)
	}
}

func TestAskWrapsQuestionInMethodologyPrompt(t *testing.T) {
	a := &fakeAgent{output: "no sql here"}
	svc := newService(t, a, &fakeExecutor{})

	svc.Ask(context.Background(), "how many orders shipped last week?")
	if len(a.prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(a.prompts))
	}
	prompt := a.prompts[0]
	if !strings.Contains(prompt, "how many orders shipped last week?") {
		t.Fatal("question not embedded in prompt")
	}
	if !strings.Contains(prompt, "ANALYZE DATABASE STRUCTURE FIRST") {
		t.Fatal("methodology instructions missing from prompt")
	}
}

func TestAskAgentFailure(t *testing.T) {
	a := &fakeAgent{err: errors.New("upstream timeout")}
	executor := &fakeExecutor{}
	svc := newService(t, a, executor)

	outcome := svc.Ask(context.Background(), "anything")
	if outcome.Success {
		t.Fatal("Success = true, want false on agent failure")
	}
	if outcome.Error != "upstream timeout" {
		t.Fatalf("Error = %q", outcome.Error)
	}
	if outcome.AgentResponse != "" || outcome.SQL != "" || outcome.Data != nil {
		t.Fatal("agent failure must not carry partial fields")
	}
	if len(executor.executed) != 0 {
		t.Fatal("executor must not run when the agent fails")
	}
}

func TestAskProseOnlyAnswer(t *testing.T) {
	a := &fakeAgent{output: "I could not find any relevant tables for that question."}
	executor := &fakeExecutor{}
	svc := newService(t, a, executor)

	outcome := svc.Ask(context.Background(), "what is the meaning of life?")
	if !outcome.Success {
		t.Fatal("prose-only answer is still a success")
	}
	if outcome.SQL != "" || outcome.Data != nil {
		t.Fatalf("SQL = %q, Data = %v, want empty", outcome.SQL, outcome.Data)
	}
	if outcome.RowCount != 0 || outcome.DataError != "" {
		t.Fatalf("RowCount = %d, DataError = %q", outcome.RowCount, outcome.DataError)
	}
	if len(executor.executed) != 0 {
		t.Fatal("executor must not run without extracted SQL")
	}
}

func TestAskExecutionFailureKeepsSuccess(t *testing.T) {
	a := &fakeAgent{output: "```sql\nSELECT * FROM missing;\n```"}
	executor := &fakeExecutor{
		err: &database.ExecutionError{Err: errors.New(`relation "missing" does not exist`)},
	}
	svc := newService(t, a, executor)

	outcome := svc.Ask(context.Background(), "show missing")
	if !outcome.Success {
		t.Fatal("execution failure must not flip Success")
	}
	if outcome.SQL != "SELECT * FROM missing;" {
		t.Fatalf("SQL = %q", outcome.SQL)
	}
	if outcome.DataError == "" || !strings.Contains(outcome.DataError, "does not exist") {
		t.Fatalf("DataError = %q", outcome.DataError)
	}
	if outcome.Data != nil || outcome.RowCount != 0 || outcome.ColumnCount != 0 {
		t.Fatal("data fields must stay empty on execution failure")
	}
}

func TestAskEmptyResultSet(t *testing.T) {
	a := &fakeAgent{output: "```sql\nSELECT id FROM users WHERE false;\n```"}
	executor := &fakeExecutor{result: database.Result{Columns: []string{"id"}, Rows: [][]any{}}}
	svc := newService(t, a, executor)

	outcome := svc.Ask(context.Background(), "nobody")
	if !outcome.Success || outcome.DataError != "" {
		t.Fatalf("Success = %v, DataError = %q", outcome.Success, outcome.DataError)
	}
	// Empty result set is a distinct state from "no SQL found": data is
	// defined, counts are zero.
	if outcome.Data == nil {
		t.Fatal("empty result set must still carry defined data")
	}
	if outcome.RowCount != 0 || outcome.ColumnCount != 0 {
		t.Fatalf("counts = %d x %d, want 0 x 0", outcome.RowCount, outcome.ColumnCount)
	}
}

func TestOutcomePreviewBoundsRows(t *testing.T) {
	rows := make([][]any, 25)
	for i := range rows {
		rows[i] = []any{i}
	}
	outcome := Outcome{Data: &database.Result{Columns: []string{"n"}, Rows: rows}}
	if got := outcome.Preview(10).RowCount(); got != 10 {
		t.Fatalf("Preview(10) rows = %d, want 10", got)
	}
	if got := (Outcome{}).Preview(10); got != nil {
		t.Fatalf("Preview on empty outcome = %v, want nil", got)
	}
}
