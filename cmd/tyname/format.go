package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/broady/tyname"
	"github.com/broady/tyname/ir"
	"golang.org/x/sync/errgroup"
)

type FormatCmd struct {
	Files []string `arg:"" optional:"" help:"Descriptor files. Reads stdin when none are given or for \"-\"."`
	Mode  string   `short:"m" help:"Name mode: display, fullname or assemblyqualified. Defaults to [format].mode."`
	Codec string   `default:"json" enum:"json,msgpack" help:"Descriptor encoding (${enum})."`
	Jobs  int      `short:"j" default:"4" help:"Files read in parallel."`
}

// formatted is the outcome for one descriptor.
type formatted struct {
	name string
	ok   bool
}

func (c *FormatCmd) Run(e *env) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	mode, err := resolveMode(c.Mode, cfg.Format.Mode)
	if err != nil {
		return err
	}

	inputs := c.Files
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	stdinUses := 0
	for _, in := range inputs {
		if in == "-" {
			stdinUses++
		}
	}
	if stdinUses > 1 {
		return errors.New("stdin (\"-\") can only be read once")
	}
	if stdinUses == 1 && isTerminal(e.stdin) {
		return errors.New("refusing to read descriptors from a terminal; pass FILE or pipe input")
	}

	results := make([][]formatted, len(inputs))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(c.Jobs, 1))
	for i, in := range inputs {
		g.Go(func() error {
			descs, err := c.readInput(ctx, in, e.stdin)
			if err != nil {
				return fmt.Errorf("%s: %w", inputLabel(in), err)
			}
			out := make([]formatted, len(descs))
			for j, d := range descs {
				if errs := ir.Validate(d); len(errs) > 0 {
					return fmt.Errorf("%s: invalid descriptor: %w", inputLabel(in), errors.Join(errs...))
				}
				out[j].name, out[j].ok = tyname.Format(d, mode)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	missing := 0
	for i, out := range results {
		for _, f := range out {
			if !f.ok {
				notice.Fprintf(e.stderr, "%s: no %s name: the type has unbound generic parameters\n", inputLabel(inputs[i]), mode)
				missing++
				continue
			}
			fmt.Fprintln(e.stdout, f.name)
		}
	}
	if missing > 0 {
		return exitError(1)
	}
	return nil
}

// readInput decodes the descriptors of one input. A JSON input may hold a
// stream of descriptors; a msgpack input holds exactly one.
func (c *FormatCmd) readInput(ctx context.Context, name string, stdin io.Reader) ([]ir.TypeDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	if c.Codec == "msgpack" {
		d, err := ir.DecodeMsgpack(r)
		if err != nil {
			return nil, err
		}
		return []ir.TypeDescriptor{d}, nil
	}

	var descs []ir.TypeDescriptor
	dec := json.NewDecoder(r)
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		d, err := ir.DecodeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", len(descs)+1, err)
		}
		descs = append(descs, d)
	}
	if len(descs) == 0 {
		return nil, errors.New("no descriptors")
	}
	return descs, nil
}

func inputLabel(name string) string {
	if name == "-" {
		return "<stdin>"
	}
	return name
}
