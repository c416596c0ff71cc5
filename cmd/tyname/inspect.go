package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/broady/tyname"
	"github.com/broady/tyname/ir"
	"github.com/broady/tyname/provider"
	"github.com/broady/tyname/sink"
)

// namesFile is written below --out.
const namesFile = "names.txt"

type InspectCmd struct {
	Packages []string `arg:"" help:"Go package patterns."`
	Mode     string   `short:"m" help:"Name mode. Defaults to [format].mode."`
	Types    []string `name:"type" short:"t" help:"Only these types and the package types they reference."`
	Out      string   `type:"path" placeholder:"DIR" help:"Also write the type names to DIR/names.txt."`
	Members  bool     `default:"true" negatable:"" help:"List struct fields under each type."`
}

func (c *InspectCmd) Run(e *env) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	mode, err := resolveMode(c.Mode, cfg.Format.Mode)
	if err != nil {
		return err
	}

	ctx := context.Background()
	p := &provider.SourceProvider{}
	catalog, err := p.BuildCatalog(ctx, provider.SourceInputOptions{
		Packages:  c.Packages,
		RootTypes: c.Types,
	})
	if err != nil {
		return err
	}

	for _, w := range catalog.Warnings {
		notice.Fprintf(e.stderr, "warning: %s: %s\n", w.Code, w.Message)
	}

	var names bytes.Buffer
	for _, t := range catalog.Types {
		name := formatOrDisplay(t, mode)
		fmt.Fprintln(e.stdout, name)
		fmt.Fprintln(&names, name)
		if !c.Members {
			continue
		}
		for _, m := range catalog.MembersOf(t) {
			fmt.Fprintf(e.stdout, "\t%s %s\n", m.Name, formatOrDisplay(m.Type, mode))
		}
	}

	if c.Out != "" {
		if err := sink.NewDir(c.Out).WriteFile(ctx, namesFile, names.Bytes()); err != nil {
			return fmt.Errorf("writing %s: %w", namesFile, err)
		}
	}
	return nil
}

// formatOrDisplay falls back to the display name for members that use the
// type parameters of their owner.
func formatOrDisplay(d ir.TypeDescriptor, mode tyname.Mode) string {
	if name, ok := tyname.Format(d, mode); ok {
		return name
	}
	name, _ := tyname.Format(d, tyname.Display)
	return name
}
