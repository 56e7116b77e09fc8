package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/viant/servicenow-mcp/internal/secret"
	mcpconfig "github.com/viant/servicenow-mcp/mcp/config"
	"github.com/viant/servicenow-mcp/servicenow"
)

// CredentialsCmd stores the ServiceNow account in the OS keyring so that the
// config file only needs to name the keyring service.
type CredentialsCmd struct {
	Username string `short:"u" long:"username" description:"ServiceNow user" required:"yes"`
	Password string `short:"p" long:"password" description:"ServiceNow password (defaults to SERVICENOW_PASSWORD)"`
	Keyring  string `short:"k" long:"keyring" description:"keyring service name (defaults to credentials.keyring or servicenow-mcp)"`
}

func (c *CredentialsCmd) Execute(_ []string) error {
	password := c.Password
	if password == "" {
		password = os.Getenv(mcpconfig.EnvPassword)
	}
	if password == "" {
		return fmt.Errorf("--password or %s is required", mcpconfig.EnvPassword)
	}

	service := c.Keyring
	if service == "" {
		cfg, err := loadConfig(context.Background())
		if err != nil {
			return err
		}
		service = cfg.Credentials.Keyring
	}
	if service == "" {
		service = mcpconfig.DefaultKeyringService
	}

	creds := servicenow.Credentials{Username: c.Username, Password: password}
	if err := secret.NewResolver().Store(service, creds); err != nil {
		return err
	}
	fmt.Printf("stored %s in keyring %q\n", creds, service)
	return nil
}
