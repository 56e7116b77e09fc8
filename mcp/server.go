package mcp

import (
	"context"

	"github.com/viant/jsonrpc/transport"
	protocolclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/logger"
	serverproto "github.com/viant/mcp-protocol/server"
)

// NewHandler is the per-connection factory passed to mcp.NewServer. Each
// connection gets its own DefaultHandler sharing the record tool entries
// built during bootstrap.
func (s *Service) NewHandler(ctx context.Context, notifier transport.Notifier, l logger.Logger, cli protocolclient.Operations) (serverproto.Handler, error) {
	handler := serverproto.NewDefaultHandler(notifier, l, cli)
	tools := s.Tools()
	for _, entry := range tools {
		handler.Registry.ToolRegistry.Put(entry.Metadata.Name, entry)
	}
	s.logger.DebugContext(ctx, "mcp connection opened", "tools", len(tools))
	return handler, nil
}
