package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DateRangeInput defines the input schema for the date-range tools.
type DateRangeInput struct {
	StartDate string `json:"start_date" jsonschema:"Start of the range in ISO format, e.g. 2024-01-01T00:00:00 (inclusive)"`
	EndDate   string `json:"end_date" jsonschema:"End of the range in ISO format, e.g. 2024-12-31T23:59:59 (inclusive)"`
}

// StaleInput defines the input schema for get_stale_dependencies.
type StaleInput struct {
	DaysThreshold *int `json:"days_threshold,omitempty" jsonschema:"Number of days without an update before a dependency is stale (default 180)"`
}

// NewFindUpdatedHandler creates the find_updated_dependencies tool handler.
func NewFindUpdatedHandler(deps *Dependencies) mcp.ToolHandlerFor[DateRangeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DateRangeInput) (*mcp.CallToolResult, any, error) {
		found, err := deps.Service.FindUpdatedBetween(ctx, input.StartDate, input.EndDate)
		if err != nil {
			return deps.failure("find_updated_dependencies", err), nil, nil
		}
		return JSONResult(found), nil, nil
	}
}

// NewFindPlannedHandler creates the find_dependencies_with_planned_updates tool handler.
func NewFindPlannedHandler(deps *Dependencies) mcp.ToolHandlerFor[DateRangeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DateRangeInput) (*mcp.CallToolResult, any, error) {
		found, err := deps.Service.FindPlannedUpdates(ctx, input.StartDate, input.EndDate)
		if err != nil {
			return deps.failure("find_dependencies_with_planned_updates", err), nil, nil
		}
		return JSONResult(found), nil, nil
	}
}

// NewHealthOverviewHandler creates the get_health_overview tool handler.
func NewHealthOverviewHandler(deps *Dependencies) mcp.ToolHandlerFor[NoInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NoInput) (*mcp.CallToolResult, any, error) {
		summary, err := deps.Service.HealthOverview(ctx)
		if err != nil {
			return deps.failure("get_health_overview", err), nil, nil
		}
		return JSONResult(summary), nil, nil
	}
}

// NewStaleHandler creates the get_stale_dependencies tool handler.
func NewStaleHandler(deps *Dependencies) mcp.ToolHandlerFor[StaleInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StaleInput) (*mcp.CallToolResult, any, error) {
		summary, err := deps.Service.StaleDependencies(ctx, input.DaysThreshold)
		if err != nil {
			return deps.failure("get_stale_dependencies", err), nil, nil
		}
		return JSONResult(summary), nil, nil
	}
}

// NewServerStatsHandler creates the server_stats tool handler.
func NewServerStatsHandler(deps *Dependencies) mcp.ToolHandlerFor[NoInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NoInput) (*mcp.CallToolResult, any, error) {
		if deps.Metrics == nil {
			return ErrorResult("Metrics collection is disabled"), nil, nil
		}
		return JSONResult(deps.Metrics.Snapshot()), nil, nil
	}
}
