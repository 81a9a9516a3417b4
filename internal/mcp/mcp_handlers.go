package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/physqa/rundiag/core"
	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

// applyInputOverrides copies the optional ingestion arguments shared by the
// diagnosis tools onto the cloned config.
func applyInputOverrides(cfg *contract.Config, request mcp.CallToolRequest) error {
	if m := request.GetString("metrics", ""); m != "" {
		cfg.MetricsGlob = m
	}
	if q := request.GetString("quality", ""); q != "" {
		cfg.QualityFile = q
	}
	if c := request.GetString("cluster_map", ""); c != "" {
		cfg.ClusterMapPath = c
	}
	if th := request.GetString("thresholds", ""); th != "" {
		cfg.ThresholdsPath = th
	}
	if bp := request.GetString("breakpoints", ""); bp != "" {
		parsed, err := contract.ParseBreakpointsString(bp, cfg.Breakpoints)
		if err != nil {
			return fmt.Errorf("invalid breakpoints: %w", err)
		}
		cfg.Breakpoints = parsed
	}
	return nil
}

func (h *toolHandler) handleDiagnoseRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyInputOverrides(cfg, request); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	result, _, err := core.GetDiagnosisResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("diagnosis failed: %v", err)), nil
	}

	// Most suspicious runs first, so a limit keeps the ones worth reading.
	runs := schema.RankRunsByScore(result.Runs)
	if cfg.ResultLimit > 0 && len(runs) > cfg.ResultLimit {
		runs = runs[:cfg.ResultLimit]
	}

	enriched := schema.EnrichRuns(runs)
	jsonData, _ := json.MarshalIndent(enriched, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRunDiagnosis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run := request.GetString("run", "")
	if run == "" {
		return mcp.NewToolResultError("run identifier is required"), nil
	}

	cfg := h.baseCfg.Clone()
	if err := applyInputOverrides(cfg, request); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, _, err := core.GetDiagnosisResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("diagnosis failed: %v", err)), nil
	}

	for _, diag := range result.Runs {
		if diag.Run == run {
			jsonData, _ := json.MarshalIndent(diag, "", "  ")
			return mcp.NewToolResultText(string(jsonData)), nil
		}
	}

	return mcp.NewToolResultError(fmt.Sprintf("run %s not found in cohort", run)), nil
}

func (h *toolHandler) handleCohortSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.SymptomsFile = request.GetString("symptoms_file", "")
	cfg.CausesFile = request.GetString("causes_file", "")
	if cfg.SymptomsFile == "" || cfg.CausesFile == "" {
		return mcp.NewToolResultError("symptoms_file and causes_file are required"), nil
	}

	summary, _, err := core.GetCohortSummary(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(summary, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
