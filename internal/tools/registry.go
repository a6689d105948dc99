package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_all_dependencies",
		Description: "Retrieve all dependencies in the system",
	}, NewGetAllHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependency_by_id",
		Description: "Retrieve a dependency by its UUID",
	}, NewGetByIDHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependency_by_name",
		Description: "Retrieve a dependency by its exact name",
	}, NewGetByNameHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_dependencies",
		Description: "Search dependencies by name (case-insensitive partial match)",
	}, NewSearchHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_dependency_existence",
		Description: "Check if a dependency with the given name exists",
	}, NewExistenceHandler(deps))

	// Date-range scans over last-updated and next-update timestamps
	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_updated_dependencies",
		Description: "Find dependencies updated in test or production within a date range (inclusive)",
	}, NewFindUpdatedHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_dependencies_with_planned_updates",
		Description: "Find dependencies with a test or production update planned within a date range (inclusive)",
	}, NewFindPlannedHandler(deps))

	// Analytics
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_health_overview",
		Description: "Health overview: total count, version drift, overdue updates, test-only and recently updated dependencies",
	}, NewHealthOverviewHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_stale_dependencies",
		Description: "Find dependencies that have not been updated in the given number of days (default 180)",
	}, NewStaleHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_dependency",
		Description: "Create a new dependency; names must be unique",
	}, NewCreateHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "server_stats",
		Description: "Server uptime and per-request timing statistics",
	}, NewServerStatsHandler(deps))
}
