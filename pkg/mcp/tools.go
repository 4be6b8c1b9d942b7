package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/soren-n/dusk/pkg/query"
	"github.com/soren-n/dusk/pkg/scanner"
)

type scanResultEntry struct {
	Path          string `json:"path"`
	Kind          string `json:"kind"`
	DirectSize    uint64 `json:"directSize"`
	AggregateSize uint64 `json:"aggregateSize"`
}

type scanResult struct {
	Root    string            `json:"root"`
	Entries []scanResultEntry `json:"entries"`
	Stats   scanner.Stats     `json:"stats"`
}

// ScanDirectoryTool runs a full synchronous scan of the requested root and
// returns every matching entry plus scan statistics as JSON.
func ScanDirectoryTool(config Config) mcp.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		root, err := request.RequireString("root")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("resolve root: %v", err)), nil
		}

		q := query.SearchQuery{Raw: absRoot, Root: absRoot}
		if pattern := request.GetString("pattern", ""); pattern != "" {
			q.RelativePattern = &pattern
		}
		if op, bytes, ok := parseSizeArgs(request); ok {
			q.SizeFilter = &query.SizeFilter{Operator: op, Bytes: bytes}
		}

		var cacheCtx *scanner.CacheContext
		if config.Store != nil {
			rootID, err := config.Store.ResolveRoot(ctx, absRoot)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("resolve cache root: %v", err)), nil
			}
			cacheCtx = &scanner.CacheContext{Store: config.Store, RootID: rootID}
		}

		entries, stats, err := scanner.RunToCompletion(q, time.Now().Unix(), cacheCtx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result := scanResult{Root: q.Root, Stats: stats}
		for _, e := range entries {
			result.Entries = append(result.Entries, scanResultEntry{
				Path:          e.Path,
				Kind:          e.Kind.String(),
				DirectSize:    e.DirectSize,
				AggregateSize: e.AggregateSize,
			})
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

// ClearCacheTool removes all cached entries for a root.
func ClearCacheTool(config Config) mcp.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		root, err := request.RequireString("root")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("resolve root: %v", err)), nil
		}
		if config.Store == nil {
			payload, _ := json.Marshal(map[string]any{"root": absRoot, "cleared": false, "reason": "no cache configured"})
			return mcp.NewToolResultText(string(payload)), nil
		}
		cleared, err := config.Store.ClearRoot(ctx, absRoot)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		payload, _ := json.Marshal(map[string]any{"root": absRoot, "cleared": cleared})
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func parseSizeArgs(request mcp.CallToolRequest) (query.SizeOperator, uint64, bool) {
	opStr := request.GetString("sizeOperator", "")
	bytesF := request.GetFloat("sizeBytes", -1)
	if opStr == "" || bytesF < 0 {
		return 0, 0, false
	}
	var op query.SizeOperator
	switch opStr {
	case "gt":
		op = query.GreaterThan
	case "gte":
		op = query.GreaterThanOrEqual
	case "lt":
		op = query.LessThan
	case "lte":
		op = query.LessThanOrEqual
	default:
		return 0, 0, false
	}
	return op, uint64(bytesF), true
}
