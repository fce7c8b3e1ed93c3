package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sqlsage/sqlsage/internal/database"
)

type OpenAIConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	Temperature   float64
	Timeout       time.Duration
	MaxIterations int
}

// OpenAIAgent drives an OpenAI-compatible chat-completions endpoint with
// function calling. Each Invoke runs a bounded tool loop: the model may
// ask for table listings, schema text, or query execution, and the
// results are fed back until it produces a plain answer or the iteration
// cap is reached.
type OpenAIAgent struct {
	baseURL       string
	apiKey        string
	model         string
	temperature   float64
	maxIterations int
	client        *http.Client
	toolbox       Toolbox
}

const systemPrompt = "You are an expert SQL analyst. You have tools to list tables, " +
	"inspect the schema, and run SQL against the live database. Inspect the schema " +
	"before writing queries. When you answer, include the final SQL statement you " +
	"used in a ```sql fenced block along with a clear interpretation of the results."

// toolResultRowCap bounds how many rows of a tool query are echoed back
// to the model.
const toolResultRowCap = 20

func NewOpenAIAgent(cfg OpenAIConfig, toolbox Toolbox) (*OpenAIAgent, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if toolbox == nil {
		return nil, fmt.Errorf("toolbox is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-5"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 5
	}
	return &OpenAIAgent{
		baseURL:       strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:        strings.TrimSpace(cfg.APIKey),
		model:         model,
		temperature:   cfg.Temperature,
		maxIterations: maxIterations,
		client:        &http.Client{Timeout: timeout},
		toolbox:       toolbox,
	}, nil
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func (a *OpenAIAgent) Invoke(ctx context.Context, prompt string) (Response, error) {
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	totalToolCalls := 0
	lastContent := ""
	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		reply, err := a.complete(ctx, messages)
		if err != nil {
			return Response{}, err
		}

		if len(reply.ToolCalls) == 0 {
			if strings.TrimSpace(reply.Content) == "" {
				return Response{}, fmt.Errorf("model returned an empty answer")
			}
			return Response{Output: reply.Content, Iterations: iteration, ToolCalls: totalToolCalls}, nil
		}

		lastContent = reply.Content
		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			totalToolCalls++
			messages = append(messages, chatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Name:       call.Function.Name,
				Content:    a.runTool(ctx, call),
			})
		}
	}

	// Iteration cap hit mid-conversation. Surface whatever narrative the
	// model produced last rather than discarding the attempt entirely.
	if strings.TrimSpace(lastContent) != "" {
		return Response{Output: lastContent, Iterations: a.maxIterations, ToolCalls: totalToolCalls}, nil
	}
	return Response{}, fmt.Errorf("agent exceeded %d iterations without an answer", a.maxIterations)
}

func (a *OpenAIAgent) complete(ctx context.Context, messages []chatMessage) (chatMessage, error) {
	payload := map[string]any{
		"model":       a.model,
		"messages":    messages,
		"temperature": a.temperature,
		"tools":       toolDefinitions(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return chatMessage{}, fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return chatMessage{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return chatMessage{}, fmt.Errorf("request chat completion: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	rawRespBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return chatMessage{}, fmt.Errorf("read chat response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return chatMessage{}, fmt.Errorf("chat completion failed status=%d body=%s", resp.StatusCode, string(rawRespBody))
	}

	var parsed struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rawRespBody, &parsed); err != nil {
		return chatMessage{}, fmt.Errorf("decode chat completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return chatMessage{}, errors.New("empty chat completion choices")
	}
	return parsed.Choices[0].Message, nil
}

func toolDefinitions() []map[string]any {
	return []map[string]any{
		functionTool("list_tables", "List the names of the tables in the database.", map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}),
		functionTool("table_info", "Describe the schema of every table: columns, types, nullability.", map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}),
		functionTool("run_query", "Execute a SQL statement against the database and return the resulting rows.", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sql": map[string]any{
					"type":        "string",
					"description": "The SQL statement to execute.",
				},
			},
			"required": []string{"sql"},
		}),
	}
}

func functionTool(name, description string, parameters map[string]any) map[string]any {
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        name,
			"description": description,
			"parameters":  parameters,
		},
	}
}

// runTool executes a requested tool and renders its output as text for
// the model. Tool failures are reported back as content so the model can
// correct itself, never as loop-fatal errors.
func (a *OpenAIAgent) runTool(ctx context.Context, call toolCall) string {
	switch call.Function.Name {
	case "list_tables":
		names, err := a.toolbox.TableNames(ctx)
		if err != nil {
			return "error: " + err.Error()
		}
		if len(names) == 0 {
			return "no tables found"
		}
		return strings.Join(names, "\n")

	case "table_info":
		info, err := a.toolbox.TableInfo(ctx)
		if err != nil {
			return "error: " + err.Error()
		}
		return info

	case "run_query":
		var args struct {
			SQL string `json:"sql"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "error: invalid arguments: " + err.Error()
		}
		result, err := a.toolbox.Execute(ctx, args.SQL)
		if err != nil {
			return "error: " + err.Error()
		}
		return renderResult(result)

	default:
		return fmt.Sprintf("error: unknown tool %q", call.Function.Name)
	}
}

func renderResult(result database.Result) string {
	if len(result.Columns) == 0 && len(result.Rows) == 0 {
		return "statement executed; no result set"
	}
	var builder strings.Builder
	builder.WriteString(strings.Join(result.Columns, "\t"))
	for i, row := range result.Rows {
		if i == toolResultRowCap {
			fmt.Fprintf(&builder, "\n... %d more rows", len(result.Rows)-toolResultRowCap)
			break
		}
		cells := make([]string, len(row))
		for j, value := range row {
			cells[j] = fmt.Sprint(value)
		}
		builder.WriteString("\n")
		builder.WriteString(strings.Join(cells, "\t"))
	}
	fmt.Fprintf(&builder, "\n(%d rows)", len(result.Rows))
	return builder.String()
}
