package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dronelab/autodrone/internal/analyzer"
	"github.com/dronelab/autodrone/internal/lang/vm"
	"github.com/dronelab/autodrone/internal/runservice"
)

// Client is a thin MCP client that proxies to the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates an MCP client that calls the REST API at baseURL.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"AutoDrone",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`AutoDrone - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Write a script in one of two surface syntaxes (block or brace) that
drives a drone around a grid level to complete its objectives before
running out of energy, time, or instructions.

AVAILABLE TOOLS:
- compile_and_run: compile a script against a level and start a run
- tick: advance a run by exactly one instruction
- run_to_completion: tick a run until it halts, errors, or hits a limit
- rewind: restore a run to an earlier point in its history
- get_state: get a run's current summary
- get_events: get a run's full event log
- score_run: analyze a completed run against its level's par values
- list_levels: list the levels available to compile against`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "compile_and_run",
		Description: "Compile a script against a level and start a new run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Name of the level to load",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Script source code",
				},
				"syntax": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"block", "brace"},
					"description": "Surface syntax the script is written in",
				},
			},
			Required: []string{"level", "source"},
		},
	}, c.handleCompileAndRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance a run by exactly one instruction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_to_completion",
		Description: "Tick a run until it halts, errors, or hits an instruction limit",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
				"max_ticks": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of ticks to execute",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleRunToCompletion)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rewind",
		Description: "Restore a run to the state it was in a number of ticks ago",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": "Number of ticks to rewind",
				},
			},
			Required: []string{"run_id", "ticks"},
		},
	}, c.handleRewind)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_state",
		Description: "Get a run's current summary without advancing it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleGetState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_events",
		Description: "Get a run's full event log",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleGetEvents)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "score_run",
		Description: "Analyze a run's terminal state against its level's par values",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleScoreRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List the levels available to compile against",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)
}

// GetMCPServer returns the underlying MCP server for serving.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func argString(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func argInt(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func (c *Client) handleCompileAndRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})

	body := map[string]string{
		"level":  argString(args, "level"),
		"source": argString(args, "source"),
		"syntax": argString(args, "syntax"),
	}

	var summary runservice.RunSummary
	if err := c.apiCall("POST", "/api/runs", body, &summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunSummary(&summary)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID := argString(args, "run_id")

	var summary runservice.RunSummary
	if err := c.apiCall("POST", fmt.Sprintf("/api/runs/%s/tick", runID), nil, &summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunSummary(&summary)), nil
}

func (c *Client) handleRunToCompletion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID := argString(args, "run_id")
	maxTicks := argInt(args, "max_ticks")

	path := fmt.Sprintf("/api/runs/%s/run", runID)
	if maxTicks > 0 {
		path += fmt.Sprintf("?max_ticks=%d", maxTicks)
	}

	var summary runservice.RunSummary
	if err := c.apiCall("POST", path, nil, &summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunSummary(&summary)), nil
}

func (c *Client) handleRewind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID := argString(args, "run_id")
	ticks := argInt(args, "ticks")

	body := map[string]int{"ticks": ticks}

	var summary runservice.RunSummary
	if err := c.apiCall("POST", fmt.Sprintf("/api/runs/%s/rewind", runID), body, &summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunSummary(&summary)), nil
}

func (c *Client) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID := argString(args, "run_id")

	var summary runservice.RunSummary
	if err := c.apiCall("GET", fmt.Sprintf("/api/runs/%s/state", runID), nil, &summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunSummary(&summary)), nil
}

func (c *Client) handleGetEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID := argString(args, "run_id")

	var events []vm.Event
	if err := c.apiCall("GET", fmt.Sprintf("/api/runs/%s/events", runID), nil, &events); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Events (%d):\n\n", len(events))
	for _, ev := range events {
		result += fmt.Sprintf("[tick %d] %s: %v\n", ev.Tick, ev.Type, ev.Data)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleScoreRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	runID := argString(args, "run_id")

	var result analyzer.Result
	if err := c.apiCall("GET", fmt.Sprintf("/api/runs/%s/score", runID), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatScore(&result)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var names []string
	if err := c.apiCall("GET", "/api/levels", nil, &names); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Levels (%d):\n", len(names))
	for _, name := range names {
		result += fmt.Sprintf("- %s\n", name)
	}

	return mcp.NewToolResultText(result), nil
}

func formatRunSummary(s *runservice.RunSummary) string {
	result := fmt.Sprintf("Run: %s\nState: %s\nWorld status: %s\n", s.ID, s.VMState, s.WorldStatus)
	result += fmt.Sprintf("Position: (%d, %d) facing %s\n", s.X, s.Y, s.Facing)
	result += fmt.Sprintf("Energy: %d\n", s.Energy)
	result += fmt.Sprintf("Instructions executed: %d, current line: %d\n", s.InstructionCount, s.CurrentLine)
	if len(s.Inventory) > 0 {
		result += "Inventory:\n"
		for name, count := range s.Inventory {
			result += fmt.Sprintf("  %s: %d\n", name, count)
		}
	}
	for _, w := range s.Warnings {
		result += fmt.Sprintf("warning: %s\n", w)
	}
	return result
}

func formatScore(r *analyzer.Result) string {
	result := fmt.Sprintf("Score: %d (%d stars)\n", r.Score, r.Stars)
	if len(r.Suggestions) > 0 {
		result += "Suggestions:\n"
		for _, s := range r.Suggestions {
			result += fmt.Sprintf("  - %s\n", s)
		}
	}
	return result
}
