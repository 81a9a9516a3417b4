// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/physqa/rundiag/internal/contract"
)

// NewMCPServer initializes and configures the run diagnosis MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Run Diagnosis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: diagnose_runs ---
	s.AddTool(mcp.NewTool("diagnose_runs",
		mcp.WithDescription("Score anomaly severity and cause clusters for every run in a metrics cohort."),
		mcp.WithString("metrics", mcp.Description("Glob pattern for the per-run metric z-score tables (defaults to the configured glob).")),
		mcp.WithString("quality", mcp.Description("Path to the physics-quality indicator table (empty skips indicator checks).")),
		mcp.WithString("cluster_map", mcp.Description("Path to the cluster definition YAML.")),
		mcp.WithString("thresholds", mcp.Description("Path to the threshold registry YAML.")),
		mcp.WithString("breakpoints", mcp.Description("Label breakpoint overrides (e.g. 'weak=2,moderate=5,strong=9').")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of runs returned.")),
	), h.handleDiagnoseRuns)

	// --- 2. Tool: get_run_diagnosis ---
	s.AddTool(mcp.NewTool("get_run_diagnosis",
		mcp.WithDescription("Get the cause scores, labels and symptom records for a single run."),
		mcp.WithString("run", mcp.Description("Run identifier to diagnose."), mcp.Required()),
		mcp.WithString("metrics", mcp.Description("Glob pattern for the per-run metric z-score tables.")),
		mcp.WithString("quality", mcp.Description("Path to the physics-quality indicator table.")),
		mcp.WithString("cluster_map", mcp.Description("Path to the cluster definition YAML.")),
		mcp.WithString("thresholds", mcp.Description("Path to the threshold registry YAML.")),
		mcp.WithString("breakpoints", mcp.Description("Label breakpoint overrides (e.g. 'weak=2,moderate=5,strong=9').")),
	), h.handleGetRunDiagnosis)

	// --- 3. Tool: cohort_summary ---
	s.AddTool(mcp.NewTool("cohort_summary",
		mcp.WithDescription("Aggregate a diagnosed cohort into per-metric severity and per-cluster label frequencies."),
		mcp.WithString("symptoms_file", mcp.Description("Path to the symptoms CSV produced by diagnose."), mcp.Required()),
		mcp.WithString("causes_file", mcp.Description("Path to the causes CSV produced by diagnose."), mcp.Required()),
	), h.handleCohortSummary)

	return s
}

// StartMCPServer starts the run diagnosis MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
