package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/viant/fluxor/model/types"
	"github.com/viant/servicenow-mcp/internal/conv"
	"github.com/viant/servicenow-mcp/internal/secret"
	"github.com/viant/servicenow-mcp/internal/syncmap"
	"github.com/viant/servicenow-mcp/mcp/config"
	"github.com/viant/servicenow-mcp/mcp/recordtool"

	serverproto "github.com/viant/mcp-protocol/server"
)

// Service bundles configuration, the record gateway and the MCP tool
// entries derived from it. All heavy lifting during instantiation lives in
// bootstrap.go to keep this file focused on the public surface.
type Service struct {
	started  int32
	config   *config.Config
	logger   *slog.Logger
	resolver *secret.Resolver

	gateway recordtool.Gateway
	actions types.Service

	// guard concurrent modifications.
	mu sync.RWMutex
	// Tool entries in registration order.
	mcpTools []*serverproto.ToolEntry
	// Tool entries by name.
	index *syncmap.Map[*serverproto.ToolEntry]
}

// Config returns the effective configuration instance. Callers must treat
// the returned object as read-only.
func (s *Service) Config() *config.Config { return s.config }

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger { return s.logger }

// ToolNames returns all exposed tool names in registration order.
func (s *Service) ToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.mcpTools))
	for i, e := range s.mcpTools {
		names[i] = e.Metadata.Name
	}
	return names
}

// ToolMetadata returns description and input schema for a named tool when
// present. The second return value is false when the tool does not exist.
func (s *Service) ToolMetadata(name string) (string, interface{}, bool) {
	e := s.index.Get(name)
	if e == nil {
		return "", nil, false
	}
	return conv.Dereference(e.Metadata.Description), e.Metadata.InputSchema, true
}

// Option modifies a service instance before it is initialised.
type Option func(*Service)

// WithConfig sets a custom configuration instance. When omitted a zero value
// config is assumed.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithGateway replaces the ServiceNow client; credentials are then not
// resolved.
func WithGateway(gateway recordtool.Gateway) Option {
	return func(s *Service) {
		s.gateway = gateway
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithResolver overrides the credentials resolver.
func WithResolver(resolver *secret.Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// New constructs a new service instance. The actual bootstrap is handled by
// init() in bootstrap.go.
func New(ctx context.Context, opts ...Option) (*Service, error) {
	svc := &Service{index: syncmap.NewRegistry[*serverproto.ToolEntry]()}
	for _, opt := range opts {
		opt(svc)
	}
	if err := svc.init(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// Start marks the service as running. Multiple invocations are safe.
func (s *Service) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return nil
	}
	s.logger.InfoContext(ctx, "servicenow-mcp started",
		"instance", s.config.Instance,
		"tools", s.ToolNames())
	return nil
}

// Shutdown stops the service. Additional invocations have no effect.
func (s *Service) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.started, 1, 2) {
		return nil
	}
	s.logger.InfoContext(ctx, "servicenow-mcp stopped")
	return nil
}

// LookupTool returns the tool entry with the given name.
func (s *Service) LookupTool(name string) (*serverproto.ToolEntry, error) {
	if e := s.index.Get(name); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("unknown tool: %v", name)
}
