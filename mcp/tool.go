// Package mcp exposes a lanes tool.Registry as an MCP (Model Context
// Protocol) server over stdio. The dispatcher is an MCP server only — it
// never consumes other MCP servers — so this package is a one-way
// adapter from lanes.Tool/tool.Handler to the mcp-go server types.
//
// Example:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("workflow_status", "Report workflow status", statusHandler),
//	)
//
//	if err := mcp.ServeStdio(registry); err != nil {
//	    log.Fatal(err)
//	}
package mcp

import (
	"encoding/json"

	lanes "github.com/lanesdev/lanes"
	"github.com/mark3labs/mcp-go/mcp"
)

// ToMCPTool converts a lanes Tool to an MCP Tool.
// The lanes Tool.Parameters JSON schema is used as the MCP Tool's RawInputSchema.
func ToMCPTool(t lanes.Tool) mcp.Tool {
	return mcp.NewToolWithRawSchema(t.Name, t.Description, t.Parameters)
}

// ToMCPTools converts a slice of lanes Tools to MCP Tools.
func ToMCPTools(tools []lanes.Tool) []mcp.Tool {
	result := make([]mcp.Tool, len(tools))
	for i, t := range tools {
		result[i] = ToMCPTool(t)
	}
	return result
}

// ToMCPCallToolResult converts a lanes ToolResult to an MCP CallToolResult.
func ToMCPCallToolResult(result lanes.ToolResult) *mcp.CallToolResult {
	if result.IsError {
		return mcp.NewToolResultError(result.Content)
	}
	return mcp.NewToolResultText(result.Content)
}

// argsToJSON marshals the raw arguments object from an MCP CallToolRequest
// into the JSON string form lanes.ToolCall.Arguments expects.
func argsToJSON(args any) (string, error) {
	if args == nil {
		return "{}", nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
