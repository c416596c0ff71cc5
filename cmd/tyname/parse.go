package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/broady/tyname"
	"github.com/broady/tyname/internal/render"
	"github.com/broady/tyname/ir"
)

type ParseCmd struct {
	Names []string `arg:"" help:"Type names to parse."`
	Mode  string   `short:"m" help:"Name mode for the output. Defaults to [format].mode."`
	JSON  bool     `name:"json" xor:"output" help:"Print the descriptor as JSON."`
	Tree  bool     `xor:"output" help:"Print the descriptor as a tree."`
}

func (c *ParseCmd) Run(e *env) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	mode, err := resolveMode(c.Mode, cfg.Format.Mode)
	if err != nil {
		return err
	}

	tree := render.NewTree(e.stdout)
	failed := false
	for _, name := range c.Names {
		d, err := tyname.Parse(name)
		if err != nil {
			var perr *tyname.ParseError
			if !errors.As(err, &perr) {
				return err
			}
			failure.Fprintf(e.stderr, "error: %s\n", perr.Msg)
			fmt.Fprintf(e.stderr, "  %s\n  %s^\n", name, strings.Repeat(" ", perr.Offset))
			failed = true
			continue
		}

		switch {
		case c.JSON:
			data, err := json.MarshalIndent(ir.Value{Type: d}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "%s\n", data)
		case c.Tree:
			fmt.Fprint(e.stdout, tree.Render(d))
		default:
			out, ok := tyname.Format(d, mode)
			if !ok {
				notice.Fprintf(e.stderr, "%s: no %s name\n", name, mode)
				failed = true
				continue
			}
			fmt.Fprintln(e.stdout, out)
		}
	}
	if failed {
		return exitError(1)
	}
	return nil
}
