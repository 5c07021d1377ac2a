package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cvgo/cvgo/internal/anonview"
	"github.com/cvgo/cvgo/internal/storage"
)

// MCPDeps holds dependencies for the MCP server. Everything it serves is
// anonymized; the MCP surface carries no viewer identity, so exposure grants
// never apply here.
type MCPDeps struct {
	Store *storage.Store
}

// NewMCPServer creates an MCP server exposing the agency-side candidate pool
// to assistant tooling.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"cvgo",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("cvgo: anonymized student candidate pool for recruitment agencies."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_candidates",
			mcp.WithDescription("Search completed candidate profiles. Results are anonymized: no names, contact details, or links."),
			mcp.WithString("search", mcp.Description("Free-text search over institution, field, and city")),
			mcp.WithString("city", mcp.Description("Filter by city")),
			mcp.WithString("degree", mcp.Description("Filter by degree type (bachelor, master, certificate, professional_course, other)")),
			mcp.WithNumber("gpa_min", mcp.Description("Minimum GPA")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		mcpSearchCandidates(deps),
	)

	s.AddTool(
		mcp.NewTool("get_candidate",
			mcp.WithDescription("Fetch one candidate profile by id, anonymized."),
			mcp.WithString("id", mcp.Description("Candidate id"), mcp.Required()),
		),
		mcpGetCandidate(deps),
	)

	s.AddTool(
		mcp.NewTool("intake_stats",
			mcp.WithDescription("Summary statistics of the candidate pool: totals, completion rate, recent signups."),
		),
		mcpIntakeStats(deps),
	)

	return s
}

func mcpSearchCandidates(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		filter := storage.StudentFilter{
			Search:        req.GetString("search", ""),
			City:          req.GetString("city", ""),
			CurrentDegree: req.GetString("degree", ""),
			Page:          1,
			Limit:         limit,
		}
		if min := req.GetFloat("gpa_min", 0); min > 0 {
			filter.GPAMin = &min
		}

		students, total, err := deps.Store.ListStudents(filter)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		b, err := json.Marshal(map[string]any{
			"candidates": anonview.BuildAll(students, nil),
			"total":      total,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetCandidate(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		student, err := deps.Store.GetStudentByID(id)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError("candidate not found"), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		if !student.IsActive {
			return mcpError("candidate not found"), nil
		}

		b, err := json.Marshal(anonview.Build(&student, nil))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal candidate: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpIntakeStats(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := deps.Store.Statistics()
		if err != nil {
			return mcpError(fmt.Sprintf("statistics failed: %v", err)), nil
		}

		type recentEntry struct {
			ID        string    `json:"id"`
			Complete  bool      `json:"profileComplete"`
			CreatedAt time.Time `json:"createdAt"`
		}
		recent := make([]recentEntry, len(stats.Recent))
		for i, st := range stats.Recent {
			recent[i] = recentEntry{ID: st.ID, Complete: st.ProfileComplete, CreatedAt: st.CreatedAt}
		}

		b, err := json.Marshal(map[string]any{
			"total":          stats.Total,
			"completed":      stats.Completed,
			"inProgress":     stats.InProgress,
			"completionRate": stats.CompletionRate,
			"recent":         recent,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
