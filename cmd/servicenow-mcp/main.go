package main

import (
	"os"

	"github.com/viant/servicenow-mcp/cmd"
)

func main() {
	cmd.Run(os.Args[1:])
}
