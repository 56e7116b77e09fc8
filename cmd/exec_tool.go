package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ExecCmd executes one tool from the CLI. Arguments can be supplied either
// inline via -i/--input or loaded from a JSON file via --file.
type ExecCmd struct {
	Name       string `short:"n" long:"name" positional-arg-name:"tool" description:"Tool name, e.g. read-multiple-records" required:"yes"`
	Inline     string `short:"i" long:"input" description:"Inline JSON arguments (object)"`
	File       string `long:"file" description:"Path to JSON file with arguments (use - for stdin)"`
	TimeoutSec int    `long:"timeout" description:"Seconds to wait for completion" default:"120"`
	JSON       bool   `long:"json" description:"Print result as JSON"`
}

func (c *ExecCmd) Execute(_ []string) error {
	if c.Inline != "" && c.File != "" {
		return fmt.Errorf("-i/--input and --file are mutually exclusive")
	}

	svc, err := serviceSingleton()
	if err != nil {
		return err
	}

	args, err := c.arguments()
	if err != nil {
		return err
	}

	timeout := time.Duration(c.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := svc.ExecuteTool(ctx, c.Name, args)
	if err != nil {
		return err
	}

	if c.JSON {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Println(out.Text)
	}
	if out.IsError {
		return errors.New("tool call failed")
	}
	return nil
}

// arguments decodes the tool arguments; no input yields an empty map.
func (c *ExecCmd) arguments() (map[string]interface{}, error) {
	var data []byte
	switch {
	case c.Inline != "":
		data = []byte(c.Inline)
	case c.File != "":
		var rdr io.Reader
		if c.File == "-" {
			rdr = os.Stdin
		} else {
			f, err := os.Open(c.File)
			if err != nil {
				return nil, fmt.Errorf("open input file: %w", err)
			}
			defer f.Close()
			rdr = f
		}
		var err error
		if data, err = io.ReadAll(rdr); err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
	default:
		return map[string]interface{}{}, nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("invalid JSON arguments: %w", err)
	}
	return args, nil
}
