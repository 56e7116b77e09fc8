package cmd

// Options is the root for the CLI. Struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Config string `short:"f" long:"config" description:"service configuration YAML/JSON path or URL"`

	Serve       *ServeCmd       `command:"serve"       description:"Start MCP server exposing the record tools"`
	ListTools   *ListToolsCmd   `command:"list-tools"  description:"List all exposed tools"`
	Tool        *ToolCmd        `command:"tool"        description:"Show detailed info about one MCP tool"`
	Exec        *ExecCmd        `command:"exec"        description:"Execute one tool from the command line"`
	Credentials *CredentialsCmd `command:"credentials" description:"Store the ServiceNow account in the OS keyring"`
}

// Init instantiates the sub-command referenced by the first positional argument
// so that go-flags can populate its fields.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "serve":
		o.Serve = &ServeCmd{}
	case "list-tools":
		o.ListTools = &ListToolsCmd{}
	case "tool":
		o.Tool = &ToolCmd{}
	case "exec":
		o.Exec = &ExecCmd{}
	case "credentials":
		o.Credentials = &CredentialsCmd{}
	}
}
