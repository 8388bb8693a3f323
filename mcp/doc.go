// Package mcp connects tool registries to the Model Context Protocol.
//
// NewServer exposes a [tool.Registry] to MCP clients such as desktop
// assistants:
//
//	registry := tool.NewRegistry().Add(
//	    tool.NewWeatherTool(),
//	    tool.NewKnowledgeBaseTool(tool.DefaultKnowledgeBase()),
//	)
//	if err := mcp.ServeStdio(registry); err != nil {
//	    log.Fatal(err)
//	}
//
// RemoteRegistry goes the other way: it lists the tools of an MCP server
// and registers proxies for them in a local registry, so prompt steps can
// call them like any other tool.
package mcp
