package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/deptrack/internal/service"
	"github.com/raphaelgruber/deptrack/internal/store"
)

// NoInput is the input schema for tools without arguments.
type NoInput struct{}

// GetByIDInput defines the input schema for get_dependency_by_id.
type GetByIDInput struct {
	DependencyID string `json:"dependency_id" jsonschema:"The UUID of the dependency to retrieve"`
}

// NameInput defines the input schema for lookups by name.
type NameInput struct {
	Name string `json:"name" jsonschema:"The exact dependency name (case-sensitive)"`
}

// SearchInput defines the input schema for search_dependencies.
type SearchInput struct {
	Query string `json:"query" jsonschema:"Text to match against dependency names (case-insensitive partial match, empty matches all)"`
}

// CreateInput defines the input schema for create_dependency.
type CreateInput struct {
	Name                  string `json:"name" jsonschema:"Unique name for the dependency"`
	TestVersion           string `json:"test_version" jsonschema:"Version deployed in the test environment"`
	ProdVersion           string `json:"prod_version,omitempty" jsonschema:"Version deployed in production (omit for test-only dependencies)"`
	TestLastUpdated       string `json:"test_last_updated,omitempty" jsonschema:"ISO-8601 timestamp of the last test update"`
	ProductionLastUpdated string `json:"production_last_updated,omitempty" jsonschema:"ISO-8601 timestamp of the last production update"`
	TestNextUpdate        string `json:"test_next_update,omitempty" jsonschema:"ISO-8601 timestamp of the next planned test update"`
	ProductionNextUpdate  string `json:"production_next_update,omitempty" jsonschema:"ISO-8601 timestamp of the next planned production update"`
	SourceURL             string `json:"source_url,omitempty" jsonschema:"Source repository URL"`
	ChangelogURL          string `json:"changelog_url,omitempty" jsonschema:"Changelog URL"`
	HomepageURL           string `json:"homepage_url,omitempty" jsonschema:"Project homepage URL"`
}

// ExistenceResult is the payload of check_dependency_existence.
type ExistenceResult struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

// NewGetAllHandler creates the get_all_dependencies tool handler.
func NewGetAllHandler(deps *Dependencies) mcp.ToolHandlerFor[NoInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NoInput) (*mcp.CallToolResult, any, error) {
		all, err := deps.Service.List(ctx)
		if err != nil {
			return deps.failure("get_all_dependencies", err), nil, nil
		}
		return JSONResult(all), nil, nil
	}
}

// NewGetByIDHandler creates the get_dependency_by_id tool handler.
func NewGetByIDHandler(deps *Dependencies) mcp.ToolHandlerFor[GetByIDInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetByIDInput) (*mcp.CallToolResult, any, error) {
		dep, err := deps.Service.GetByID(ctx, input.DependencyID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrorResult(fmt.Sprintf("Dependency with id '%s' not found", input.DependencyID)), nil, nil
		}
		if err != nil {
			return deps.failure("get_dependency_by_id", err), nil, nil
		}
		return JSONResult(dep), nil, nil
	}
}

// NewGetByNameHandler creates the get_dependency_by_name tool handler.
func NewGetByNameHandler(deps *Dependencies) mcp.ToolHandlerFor[NameInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NameInput) (*mcp.CallToolResult, any, error) {
		dep, err := deps.Service.GetByName(ctx, input.Name)
		if errors.Is(err, store.ErrNotFound) {
			return ErrorResult(fmt.Sprintf("Dependency with name '%s' not found", input.Name)), nil, nil
		}
		if err != nil {
			return deps.failure("get_dependency_by_name", err), nil, nil
		}
		return JSONResult(dep), nil, nil
	}
}

// NewSearchHandler creates the search_dependencies tool handler.
func NewSearchHandler(deps *Dependencies) mcp.ToolHandlerFor[SearchInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
		found, err := deps.Service.Search(ctx, input.Query)
		if err != nil {
			return deps.failure("search_dependencies", err), nil, nil
		}

		deps.Logger.Info("search completed", "query", shorten(input.Query, maxQueryLogLen), "results", len(found))

		return JSONResult(found), nil, nil
	}
}

// NewExistenceHandler creates the check_dependency_existence tool handler.
func NewExistenceHandler(deps *Dependencies) mcp.ToolHandlerFor[NameInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NameInput) (*mcp.CallToolResult, any, error) {
		exists, err := deps.Service.Exists(ctx, input.Name)
		if err != nil {
			return deps.failure("check_dependency_existence", err), nil, nil
		}
		return JSONResult(ExistenceResult{Name: input.Name, Exists: exists}), nil, nil
	}
}

// NewCreateHandler creates the create_dependency tool handler.
func NewCreateHandler(deps *Dependencies) mcp.ToolHandlerFor[CreateInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateInput) (*mcp.CallToolResult, any, error) {
		dep, err := deps.Service.Create(ctx, service.CreateRequest{
			Name:                  input.Name,
			TestVersion:           input.TestVersion,
			ProdVersion:           optional(input.ProdVersion),
			SourceURL:             optional(input.SourceURL),
			ChangelogURL:          optional(input.ChangelogURL),
			HomepageURL:           optional(input.HomepageURL),
			TestLastUpdated:       input.TestLastUpdated,
			ProductionLastUpdated: input.ProductionLastUpdated,
			TestNextUpdate:        input.TestNextUpdate,
			ProductionNextUpdate:  input.ProductionNextUpdate,
		})
		if err != nil {
			return deps.failure("create_dependency", err), nil, nil
		}

		deps.Logger.Info("dependency created", "id", dep.ID, "name", dep.Name)
		return JSONResult(dep), nil, nil
	}
}

const maxQueryLogLen = 30

// shorten cuts s to n runes for logging.
func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
