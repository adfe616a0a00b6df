// Command workflowd is the workflow dispatcher: an MCP stdio server that
// exposes the eight workflow tools to an orchestrating agent process.
//
// Usage:
//
//	workflowd --worktree /path/to/.worktrees/my-session \
//	          --workflow-path /path/to/repo/workflows/build.workflow.yaml \
//	          --repo-root /path/to/repo
//
// All three flags are required and must be absolute paths; --workflow-path
// must name a file ending in ".workflow.yaml". workflowd validates its
// flags before touching stdio: on any failure it prints a diagnostic to
// stderr and exits 1, so the orchestrating agent sees a clean non-zero
// exit rather than a hung subprocess.
//
// Logging goes to stderr only, since stdout is reserved for the MCP
// line-delimited JSON transport. Set LANES_LOG_LEVEL (debug, info, warn,
// error) to control verbosity; an optional .env file in the working
// directory is loaded first if present.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lanesdev/lanes/dispatcher"
	"github.com/lanesdev/lanes/mcp"
	"github.com/lanesdev/lanes/tool"
	"github.com/lanesdev/lanes/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "workflowd:", err)
		os.Exit(1)
	}
}

func run() error {
	var worktree, workflowPath, repoRoot string
	flag.StringVar(&worktree, "worktree", "", "absolute path to the session's git worktree (required)")
	flag.StringVar(&workflowPath, "workflow-path", "", "absolute path to the *.workflow.yaml template (required)")
	flag.StringVar(&repoRoot, "repo-root", "", "absolute path to the repository root (required)")
	flag.Parse()

	if err := validateFlags(worktree, workflowPath, repoRoot); err != nil {
		return err
	}

	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevelFromEnv(),
	}))

	d, err := dispatcher.New(worktree, workflowPath, repoRoot, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}

	registry := buildRegistry(d)

	logger.Info("workflowd starting", "worktree", worktree, "workflowPath", workflowPath, "repoRoot", repoRoot)
	return mcp.ServeStdio(registry,
		mcp.WithName("lanes-workflow-dispatcher"),
		mcp.WithVersion("1.0.0"),
	)
}

func validateFlags(worktree, workflowPath, repoRoot string) error {
	if worktree == "" || workflowPath == "" || repoRoot == "" {
		return fmt.Errorf("--worktree, --workflow-path, and --repo-root are all required")
	}
	for name, v := range map[string]string{"--worktree": worktree, "--workflow-path": workflowPath, "--repo-root": repoRoot} {
		if !filepath.IsAbs(v) {
			return fmt.Errorf("%s must be an absolute path, got %q", name, v)
		}
	}
	if !strings.HasSuffix(workflowPath, ".workflow.yaml") {
		return fmt.Errorf("--workflow-path must name a file ending in .workflow.yaml, got %q", workflowPath)
	}
	if info, err := os.Stat(workflowPath); err != nil || info.IsDir() {
		return fmt.Errorf("--workflow-path does not reference a readable file: %q", workflowPath)
	}
	if info, err := os.Stat(repoRoot); err != nil || !info.IsDir() {
		return fmt.Errorf("--repo-root does not reference a directory: %q", repoRoot)
	}
	return nil
}

func logLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LANES_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildRegistry binds the eight workflow tools to typed argument structs,
// generating each one's JSON Schema from struct tags.
func buildRegistry(d *dispatcher.Dispatcher) *tool.Registry {
	return tool.NewRegistry().Add(
		tool.Func("workflow_start", "Start or resume the workflow, returning the current step's instructions.",
			func(ctx context.Context, args WorkflowStartArgs) (string, error) {
				return jsonResult(d.WorkflowStart(args.Summary))
			}),
		tool.Func("workflow_status", "Report the workflow's current position without advancing it.",
			func(ctx context.Context, args NoArgs) (string, error) {
				return jsonResult(d.WorkflowStatus())
			}),
		tool.Func("workflow_advance", "Record the current step's output and advance to the next position.",
			func(ctx context.Context, args WorkflowAdvanceArgs) (string, error) {
				return jsonResult(d.WorkflowAdvance(args.Output))
			}),
		tool.Func("workflow_set_tasks", "Replace the task list for a loop step.",
			func(ctx context.Context, args WorkflowSetTasksArgs) (string, error) {
				tasks := make([]workflow.Task, len(args.Tasks))
				for i, t := range args.Tasks {
					tasks[i] = workflow.Task{ID: t.ID, Title: t.Title, Description: t.Description, Status: workflow.TaskPending}
				}
				return jsonResult(d.WorkflowSetTasks(args.LoopID, tasks))
			}),
		tool.Func("workflow_context", "Return every step output recorded so far, keyed by dotted step path.",
			func(ctx context.Context, args NoArgs) (string, error) {
				return jsonResult(d.WorkflowContext())
			}),
		tool.Func("register_artefacts", "Register file paths produced by the current step as workflow artefacts.",
			func(ctx context.Context, args RegisterArtefactsArgs) (string, error) {
				return jsonResult(d.RegisterArtefacts(args.Paths))
			}),
		tool.Func("session_create", "Request creation of a new orchestrated session.",
			func(ctx context.Context, args SessionCreateArgs) (string, error) {
				return jsonResult(d.SessionCreate(args.Name, args.SourceBranch, args.Prompt, args.Workflow))
			}),
		tool.Func("session_clear", "Request teardown of the current session's worktree.",
			func(ctx context.Context, args NoArgs) (string, error) {
				return jsonResult(d.SessionClear())
			}),
	)
}
