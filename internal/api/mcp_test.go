package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cvgo/cvgo/internal/storage"
)

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return MCPDeps{Store: store}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPSearchCandidates_Anonymized(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	seedCompleted(t, store, "stu-1", "Dana Levi", "dana@example.com", "ירושלים")

	handler := mcpSearchCandidates(deps)
	result, err := handler(context.Background(), makeCallToolRequest("search_candidates", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	text := toolText(t, result)
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
	for _, leak := range []string{"Dana Levi", "dana@example.com"} {
		if strings.Contains(text, leak) {
			t.Errorf("tool output leaks %q", leak)
		}
	}
}

func TestMCPGetCandidate(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	seedCompleted(t, store, "stu-1", "Dana Levi", "dana@example.com", "חיפה")

	handler := mcpGetCandidate(deps)

	result, err := handler(context.Background(), makeCallToolRequest("get_candidate", map[string]interface{}{"id": "stu-1"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}
	if text := toolText(t, result); strings.Contains(text, "Dana Levi") {
		t.Error("candidate name leaked")
	}

	result, err = handler(context.Background(), makeCallToolRequest("get_candidate", map[string]interface{}{"id": "none"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Error("missing candidate should be a tool error")
	}
}

func TestMCPGetCandidate_InactiveHidden(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	seedCompleted(t, store, "stu-1", "Dana Levi", "dana@example.com", "חיפה")

	st, err := store.GetStudentByID("stu-1")
	if err != nil {
		t.Fatalf("loading seed: %v", err)
	}
	st.IsActive = false
	if err := store.UpdateStudent(st); err != nil {
		t.Fatalf("deactivating seed: %v", err)
	}

	handler := mcpGetCandidate(deps)
	result, err := handler(context.Background(), makeCallToolRequest("get_candidate", map[string]interface{}{"id": "stu-1"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Error("inactive candidate should be hidden")
	}
}

func TestMCPIntakeStats(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	seedCompleted(t, store, "stu-1", "Dana Levi", "dana@example.com", "תל אביב")

	now := time.Now().UTC().Truncate(time.Second)
	incomplete := storage.Student{
		ID: "stu-2", SessionID: "sess-2", IsActive: true,
		CreatedAt: now, LastUpdated: now, LastAccessed: now,
	}
	if err := store.CreateStudent(incomplete); err != nil {
		t.Fatalf("seeding incomplete: %v", err)
	}

	handler := mcpIntakeStats(deps)
	result, err := handler(context.Background(), makeCallToolRequest("intake_stats", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var resp struct {
		Total          int `json:"total"`
		Completed      int `json:"completed"`
		CompletionRate int `json:"completionRate"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &resp); err != nil {
		t.Fatalf("unmarshaling result: %v", err)
	}
	if resp.Total != 2 || resp.Completed != 1 || resp.CompletionRate != 50 {
		t.Errorf("stats = %+v", resp)
	}
}
