package tools

import (
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/deptrack/internal/models"
	"github.com/raphaelgruber/deptrack/internal/store"
)

// ErrorResult creates a tool error result whose text is {"error": msg}.
// Returns IsError=true so the model can see the error and self-correct.
func ErrorResult(msg string) *mcp.CallToolResult {
	res := JSONResult(map[string]string{"error": msg})
	res.IsError = true
	return res
}

// JSONResult creates a success result with v encoded as indented JSON.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult("encode result: " + err.Error())
	}
	return TextResult(string(data))
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errorMessage turns a core error into the message reported to callers.
func errorMessage(err error) string {
	var parseErr *models.ParseError
	var dupErr *store.DuplicateNameError
	switch {
	case errors.As(err, &parseErr):
		return "Invalid date format: " + parseErr.Error()
	case errors.As(err, &dupErr):
		return "Dependency with name '" + dupErr.Name + "' already exists"
	case errors.Is(err, store.ErrStorageUnavailable):
		return "Storage unavailable: " + err.Error()
	default:
		return err.Error()
	}
}

// failure logs err and converts it to an error result.
func (d *Dependencies) failure(tool string, err error) *mcp.CallToolResult {
	msg := errorMessage(err)
	if errors.Is(err, store.ErrStorageUnavailable) {
		d.Logger.Error("tool failed", "tool", tool, "error", err)
	} else {
		d.Logger.Debug("tool rejected input", "tool", tool, "error", err)
	}
	return ErrorResult(msg)
}
