// Package client calls the tools of a remote deptrack server over MCP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/stats"
)

// DefaultEndpoint is used when no server URL is configured.
const DefaultEndpoint = "http://localhost:8000/mcp"

const defaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// Endpoint is the streamable HTTP endpoint, e.g. http://host:8000/mcp.
	Endpoint string
	// Token is sent as a bearer token when set.
	Token string
	// Timeout bounds each HTTP request. Zero uses 30s.
	Timeout time.Duration
	// HTTPClient overrides the transport entirely (Token and Timeout are ignored).
	HTTPClient *http.Client
	Version    string
}

// Client is a connected MCP session to a deptrack server.
type Client struct {
	session *mcp.ClientSession
}

// ToolError is returned when a tool reports an error result.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Message)
}

// Connect opens a session to the server.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: bearerTransport{token: opts.Token, base: http.DefaultTransport},
		}
	}

	c := mcp.NewClient(&mcp.Implementation{Name: "deptrack-cli", Version: opts.Version}, nil)
	session, err := c.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   opts.Endpoint,
		HTTPClient: httpClient,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", opts.Endpoint, err)
	}
	return &Client{session: session}, nil
}

// Close ends the session.
func (c *Client) Close() error {
	return c.session.Close()
}

// Tools returns the names of the tools the server offers.
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	res, err := c.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	names := make([]string, 0, len(res.Tools))
	for _, t := range res.Tools {
		names = append(names, t.Name)
	}
	return names, nil
}

// CallRaw invokes a tool and returns its text payload.
func (c *Client) CallRaw(ctx context.Context, tool string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call %s: %w", tool, err)
	}

	var b strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			b.WriteString(text.Text)
		}
	}
	payload := b.String()

	if res.IsError {
		return "", &ToolError{Tool: tool, Message: errorMessage(payload)}
	}
	return payload, nil
}

// Call invokes a tool and decodes its JSON payload into result.
func (c *Client) Call(ctx context.Context, tool string, args map[string]any, result any) error {
	payload, err := c.CallRaw(ctx, tool, args)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), result); err != nil {
		return fmt.Errorf("decode %s result: %w", tool, err)
	}
	return nil
}

// =============================================================================
// Typed helpers
// =============================================================================

// ListDependencies returns every dependency on the server.
func (c *Client) ListDependencies(ctx context.Context) ([]models.Dependency, error) {
	var deps []models.Dependency
	err := c.Call(ctx, "get_all_dependencies", nil, &deps)
	return deps, err
}

// HealthOverview fetches the server's health summary.
func (c *Client) HealthOverview(ctx context.Context) (stats.HealthSummary, error) {
	var summary stats.HealthSummary
	err := c.Call(ctx, "get_health_overview", nil, &summary)
	return summary, err
}

// StaleDependencies fetches the stale report. A nil threshold uses the server default.
func (c *Client) StaleDependencies(ctx context.Context, days *int) (stats.StaleSummary, error) {
	args := map[string]any{}
	if days != nil {
		args["days_threshold"] = *days
	}
	var summary stats.StaleSummary
	err := c.Call(ctx, "get_stale_dependencies", args, &summary)
	return summary, err
}

// errorMessage extracts msg from a {"error": msg} payload.
func errorMessage(payload string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil || body.Error == "" {
		return payload
	}
	return body.Error
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if b.token == "" {
		return b.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}
