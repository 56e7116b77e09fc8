package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/viant/servicenow-mcp/internal/secret"
	"github.com/viant/servicenow-mcp/mcp/config"
	"github.com/viant/servicenow-mcp/mcp/recordtool"
	"github.com/viant/servicenow-mcp/servicenow"
)

// init orchestrates the individual preparation steps once all options have
// been applied.
func (s *Service) init(ctx context.Context) error {
	s.initDefaults()

	if s.gateway == nil {
		// Validate configuration early to fail fast when possible.
		if err := s.config.Validate(); err != nil {
			return err
		}
		if err := s.initGateway(ctx); err != nil {
			return err
		}
	}

	s.actions = recordtool.New(s.gateway)
	return s.buildToolRegistry()
}

// initDefaults applies fall-back values for optional dependencies that were
// not supplied through options.
func (s *Service) initDefaults() {
	if s.config == nil {
		s.config = &config.Config{}
	}
	s.config.Init()
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.resolver == nil {
		s.resolver = secret.NewResolver()
	}
}

// initGateway resolves credentials once and builds the ServiceNow client.
func (s *Service) initGateway(ctx context.Context) error {
	creds := s.config.Credentials
	credentials, err := s.resolver.Resolve(ctx, secret.Source{
		Username:  creds.Username,
		Password:  creds.Password,
		SecretURL: creds.SecretURL,
		SecretKey: creds.SecretKey,
		Keyring:   creds.Keyring,
	})
	if err != nil {
		return fmt.Errorf("resolve credentials: %w", err)
	}

	instance := servicenow.Instance{Name: s.config.Instance, BaseURL: s.config.BaseURL}
	client := servicenow.NewClient(instance, credentials,
		servicenow.WithTimeout(time.Duration(s.config.TimeoutSec)*time.Second),
		servicenow.WithMaxResponseBytes(s.config.MaxResponseBytes),
		servicenow.WithLogger(s.logger),
	)
	s.gateway = client
	s.logger.Debug("servicenow gateway ready", "endpoint", client.Instance().URL(), "user", credentials.Username)
	return nil
}
