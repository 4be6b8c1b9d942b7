package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterAll registers every dusk MCP tool with the given server.
func RegisterAll(s *server.MCPServer, config Config) error {
	scanDirectoryTool := mcp.NewTool("scan_directory",
		mcp.WithDescription(`Scan a directory tree and return every matching entry with direct/aggregate sizes, plus scan statistics. Response: {root,entries:[{path,kind,directSize,aggregateSize}],stats:{filesScanned,dirsScanned,cachedDirs,cachedEntries,cachedBytes,fsErrors,cacheValidationErrors}}. Repeated scans of an unchanged tree reuse the on-disk cache and report it via the cached* stats.`),
		mcp.WithString("root", mcp.Required(), mcp.Description("Absolute or relative path to scan")),
		mcp.WithString("pattern", mcp.Description("Optional glob pattern (doublestar syntax, '**' crosses directories) restricting which files are reported")),
		mcp.WithString("sizeOperator", mcp.Description("Optional size comparison: gt, gte, lt, or lte")),
		mcp.WithNumber("sizeBytes", mcp.Description("Byte threshold paired with sizeOperator")),
	)
	s.AddTool(scanDirectoryTool, ScanDirectoryTool(config))

	clearCacheTool := mcp.NewTool("clear_cache",
		mcp.WithDescription(`Remove all cached entries for a root, forcing the next scan to walk the filesystem cold. Response: {root,cleared}.`),
		mcp.WithString("root", mcp.Required(), mcp.Description("Absolute or relative path whose cache should be cleared")),
	)
	s.AddTool(clearCacheTool, ClearCacheTool(config))

	return nil
}
