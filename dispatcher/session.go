package dispatcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// sanitizePattern is the permitted charset for session names and branch
// names: letters, digits, underscore, hyphen, dot, forward slash.
var sanitizePattern = regexp.MustCompile(`[^a-zA-Z0-9_\-./]`)

func sanitize(s string) string {
	return sanitizePattern.ReplaceAllString(s, "")
}

// sessionCreateResponse is returned by SessionCreate.
type sessionCreateResponse struct {
	Success    bool   `json:"success"`
	ConfigPath string `json:"configPath,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SessionCreate writes an intent file describing a requested new
// session under <repoRoot>/.lanes/pending-sessions/. It is a pure
// side-effect: it never touches workflow state, and the core never
// performs the session creation itself — that is an external
// collaborator's responsibility.
func (d *Dispatcher) SessionCreate(name, sourceBranch, prompt, workflowName string) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sanitizedName := sanitize(name)
	if sanitizedName == "" {
		return sessionCreateResponse{Success: false, Error: "invalid session name: " + name}, nil
	}

	sanitizedBranch := sanitize(sourceBranch)
	if sanitizedBranch == "" {
		return sessionCreateResponse{Success: false, Error: "invalid source branch: " + sourceBranch}, nil
	}

	dir := filepath.Join(d.repoRoot, ".lanes", "pending-sessions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sessionCreateResponse{Success: false, Error: "failed to create pending-sessions directory: " + err.Error()}, nil
	}

	// "/" is a permitted name character; flatten it so the request file
	// stays directly inside pending-sessions.
	fileName := fmt.Sprintf("%s-%d.json", strings.ReplaceAll(sanitizedName, "/", "-"), time.Now().UnixMilli())
	configPath := filepath.Join(dir, fileName)

	doc := map[string]any{
		"requestedAt":  time.Now().UTC().Format(time.RFC3339),
		"name":         sanitizedName,
		"sourceBranch": sanitizedBranch,
	}
	if prompt != "" {
		doc["prompt"] = prompt
	}
	if workflowName != "" {
		doc["workflow"] = workflowName
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return sessionCreateResponse{Success: false, Error: "failed to encode session request: " + err.Error()}, nil
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return sessionCreateResponse{Success: false, Error: "failed to write session request: " + err.Error()}, nil
	}

	return sessionCreateResponse{Success: true, ConfigPath: configPath}, nil
}

// sessionClearResponse is returned by SessionClear.
type sessionClearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SessionClear validates the dispatcher's worktree path structure and
// writes an intent file under <repoRoot>/.lanes/clear-requests/.
func (d *Dispatcher) SessionClear() (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sessionName, err := sessionNameFromWorktree(d.worktree)
	if err != nil {
		return sessionClearResponse{Success: false, Error: err.Error()}, nil
	}

	dir := filepath.Join(d.repoRoot, ".lanes", "clear-requests")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sessionClearResponse{Success: false, Error: "failed to create clear-requests directory: " + err.Error()}, nil
	}

	fileName := fmt.Sprintf("%s-%d.json", sessionName, time.Now().UnixMilli())
	configPath := filepath.Join(dir, fileName)

	doc := map[string]any{
		"requestedAt": time.Now().UTC().Format(time.RFC3339),
		"sessionName": sessionName,
		"worktree":    d.worktree,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return sessionClearResponse{Success: false, Error: "failed to encode clear request: " + err.Error()}, nil
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return sessionClearResponse{Success: false, Error: "failed to write clear request: " + err.Error()}, nil
	}

	return sessionClearResponse{Success: true, Message: "clear requested for " + sessionName}, nil
}

// sessionNameFromWorktree validates that worktree lies within a
// ".worktrees/<sessionName>" directory and extracts sessionName (the first
// path component after the last ".worktrees/"), rejecting "." and "..".
func sessionNameFromWorktree(worktree string) (string, error) {
	const marker = ".worktrees" + string(filepath.Separator)
	idx := strings.LastIndex(worktree, marker)
	if idx < 0 {
		return "", fmt.Errorf("Invalid worktree path structure: %s. Expected path within .worktrees/ directory.", worktree)
	}

	rest := worktree[idx+len(marker):]
	sessionName := strings.SplitN(rest, string(filepath.Separator), 2)[0]
	if sessionName == "" || sessionName == "." || sessionName == ".." {
		return "", fmt.Errorf("Invalid worktree path structure: %s. Expected path within .worktrees/ directory.", worktree)
	}

	return sessionName, nil
}
