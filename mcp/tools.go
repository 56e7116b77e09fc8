package mcp

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/viant/fluxor/model/types"
	"github.com/viant/jsonrpc"
	mcpschema "github.com/viant/mcp-protocol/schema"
	serverproto "github.com/viant/mcp-protocol/server"
	"github.com/viant/servicenow-mcp/internal/conv"
	mcpcontext "github.com/viant/servicenow-mcp/mcp/context"
	"github.com/viant/servicenow-mcp/mcp/matcher"
	"github.com/viant/servicenow-mcp/mcp/recordtool"
	"github.com/viant/servicenow-mcp/mcp/tool/conversion"
)

// Tools returns the exposed tool entries in registration order. The slice is
// a copy and therefore safe for callers to modify.
func (s *Service) Tools() serverproto.Tools {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(serverproto.Tools, len(s.mcpTools))
	copy(result, s.mcpTools)
	return result
}

// MatchTools returns the exposed tools whose name satisfies pattern.
func (s *Service) MatchTools(pattern string) serverproto.Tools {
	var result = make(serverproto.Tools, 0)
	for _, entry := range s.Tools() {
		if matcher.Match(pattern, entry.Metadata.Name) {
			result = append(result, entry)
		}
	}
	return result
}

// buildToolRegistry converts every action method enabled by the configured
// patterns into a tool entry, once during bootstrap.
func (s *Service) buildToolRegistry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sig := range s.actions.Methods() {
		if !s.enabled(sig.Name) {
			continue
		}
		entry, err := s.newToolEntry(sig)
		if err != nil {
			return err
		}
		if !s.index.PutIfAbsent(sig.Name, entry) {
			continue // keep first definition encountered
		}
		s.mcpTools = append(s.mcpTools, entry)
	}
	return nil
}

// enabled reports whether name is selected by the configured patterns. A
// "!" pattern excludes regardless of order; a list holding only exclusions
// selects everything else.
func (s *Service) enabled(name string) bool {
	included, positive := false, false
	for _, pattern := range s.config.Tools {
		if strings.HasPrefix(pattern, "!") {
			if !matcher.Match(pattern, name) {
				return false
			}
			continue
		}
		positive = true
		if matcher.Match(pattern, name) {
			included = true
		}
	}
	return included || !positive
}

// newToolEntry builds MCP metadata and the call handler for one action method.
func (s *Service) newToolEntry(sig types.Signature) (*serverproto.ToolEntry, error) {
	metadata, err := conversion.BuildSchema(&sig)
	if err != nil {
		return nil, err
	}
	exec, err := s.actions.Method(sig.Name)
	if err != nil {
		return nil, err
	}
	name := sig.Name
	entry := &serverproto.ToolEntry{Metadata: metadata}
	entry.Handler = func(ctx context.Context, request *mcpschema.CallToolRequest) (*mcpschema.CallToolResult, *jsonrpc.Error) {
		var args map[string]interface{}
		if request != nil {
			args = map[string]interface{}(request.Params.Arguments)
		}
		output, err := s.call(ctx, name, exec, args)
		res := &mcpschema.CallToolResult{}
		if err != nil {
			res.IsError = conv.Pointer[bool](true)
			res.Content = append(res.Content, mcpschema.CallToolResultContentElem{
				Type: "text",
				Text: err.Error(),
			})
			return res, nil
		}
		if output.IsError {
			res.IsError = conv.Pointer[bool](true)
		}
		res.Content = append(res.Content, mcpschema.CallToolResultContentElem{
			Type: "text",
			Text: output.Text,
		})
		return res, nil
	}
	return entry, nil
}

// ExecuteTool invokes an exposed tool with the supplied arguments without a
// transport.
func (s *Service) ExecuteTool(ctx context.Context, name string, args map[string]interface{}) (*recordtool.Output, error) {
	if _, ok := s.index.Lookup(name); !ok {
		return nil, fmt.Errorf("unknown tool: %v", name)
	}
	exec, err := s.actions.Method(name)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, name, exec, args)
}

// call runs one invocation; a panic is reported as an error so that a
// failed call never takes the process down.
func (s *Service) call(ctx context.Context, name string, exec types.Executable, args map[string]interface{}) (output *recordtool.Output, err error) {
	ctx = mcpcontext.WithCallID(ctx, "")
	callID, _ := mcpcontext.CallID(ctx)
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "tool panic", "tool", name, "callID", callID, "panic", r, "stack", string(debug.Stack()))
			output, err = nil, fmt.Errorf("tool %s failed: %v", name, r)
		}
		attrs := []interface{}{"tool", name, "callID", callID, "elapsed", time.Since(started)}
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "tool call rejected", append(attrs, "error", err)...)
		case output.IsError:
			s.logger.WarnContext(ctx, "tool call failed", append(attrs, "result", output.Text)...)
		default:
			s.logger.InfoContext(ctx, "tool call", attrs...)
		}
	}()

	output = &recordtool.Output{}
	if err = exec(ctx, args, output); err != nil {
		return nil, err
	}
	return output, nil
}
