// Package agent hosts the language-model collaborator that turns a
// question prompt into a narrative answer. How the agent gets there,
// including which database tools it calls along the way, is its own
// business; callers only see Invoke.
package agent

import (
	"context"

	"github.com/sqlsage/sqlsage/internal/database"
)

// Response carries the agent's free-text answer plus loop accounting for
// metrics.
type Response struct {
	Output     string
	Iterations int
	ToolCalls  int
}

type Agent interface {
	Invoke(ctx context.Context, prompt string) (Response, error)
}

// Toolbox is the database surface exposed to the agent as tools. The
// production implementation is *database.DB.
type Toolbox interface {
	TableNames(ctx context.Context) ([]string, error)
	TableInfo(ctx context.Context) (string, error)
	Execute(ctx context.Context, sql string) (database.Result, error)
}
