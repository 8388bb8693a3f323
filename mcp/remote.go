package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/tool"
)

// RemoteRegistry lists and calls the tools of an MCP server.
// It is safe for concurrent use.
type RemoteRegistry struct {
	client *client.Client

	mu    sync.RWMutex
	tools map[string]ai.Tool
}

// NewRemoteRegistry starts command as an MCP server over stdio and
// connects to it.
func NewRemoteRegistry(ctx context.Context, command string, env []string, args ...string) (*RemoteRegistry, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("mcp: create client: %w", err)
	}
	return NewRemoteRegistryFromClient(ctx, c)
}

// NewRemoteRegistrySSE connects to an MCP server over SSE at baseURL.
func NewRemoteRegistrySSE(ctx context.Context, baseURL string) (*RemoteRegistry, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("mcp: create SSE client: %w", err)
	}
	return NewRemoteRegistryFromClient(ctx, c)
}

// NewRemoteRegistryFromClient initializes a session on c and fetches the
// tool list.
func NewRemoteRegistryFromClient(ctx context.Context, c *client.Client) (*RemoteRegistry, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp: start client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    "flowgate",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: initialize session: %w", err)
	}

	r := &RemoteRegistry{client: c, tools: make(map[string]ai.Tool)}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: list tools: %w", err)
	}
	return r, nil
}

// Close closes the connection.
func (r *RemoteRegistry) Close() error {
	return r.client.Close()
}

// Refresh fetches the current tool list from the server.
func (r *RemoteRegistry) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	tools := lo.SliceToMap(result.Tools, func(t mcp.Tool) (string, ai.Tool) {
		return t.Name, FromMCPTool(t)
	})

	r.mu.Lock()
	r.tools = tools
	r.mu.Unlock()
	return nil
}

// Tools returns the remote tool declarations sorted by name.
func (r *RemoteRegistry) Tools() []ai.Tool {
	r.mu.RLock()
	tools := lo.Values(r.tools)
	r.mu.RUnlock()

	slices.SortFunc(tools, func(a, b ai.Tool) int { return strings.Compare(a.Name, b.Name) })
	return tools
}

// Has reports whether the server offers a tool named name.
func (r *RemoteRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Len returns the number of remote tools.
func (r *RemoteRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute calls a tool on the server. A result the server flags as an
// error is returned as an error.
func (r *RemoteRegistry) Execute(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	result, err := r.client.CallTool(ctx, toCallToolRequest(call))
	if err != nil {
		return ai.ToolResult{}, fmt.Errorf("mcp: call %s: %w", call.Name, err)
	}
	return fromCallToolResult(call, result)
}

// RegisterInto adds a proxy for every remote tool to local. The proxies
// forward calls to the server.
func (r *RemoteRegistry) RegisterInto(local *tool.Registry) error {
	handler := func(ctx context.Context, call ai.ToolCall) (any, error) {
		res, err := r.Execute(ctx, call)
		if err != nil {
			return nil, err
		}
		return res.Content, nil
	}
	for _, t := range r.Tools() {
		if err := local.Register(t, handler); err != nil {
			return err
		}
	}
	return nil
}
