package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/broady/tyname"
	"github.com/broady/tyname/internal/config"
	"github.com/fatih/color"
	"golang.org/x/term"
)

type CLI struct {
	Config string `help:"Config file. Defaults to $TYNAME_CONFIG or the nearest tyname.toml." type:"path" placeholder:"FILE"`

	Format  FormatCmd  `cmd:"" help:"Format descriptors read from files or stdin."`
	Parse   ParseCmd   `cmd:"" help:"Parse type names and print them again."`
	Inspect InspectCmd `cmd:"" help:"List the type names declared in Go packages."`
	Serve   ServeCmd   `cmd:"" help:"Serve the TypeNames HTTP API."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// env is what commands read and write instead of the process globals.
type env struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	configPath string
}

func (e *env) config() (*config.Config, error) {
	return config.Resolve(e.configPath, ".")
}

var (
	notice  = color.New(color.FgYellow)
	failure = color.New(color.FgRed, color.Bold)
)

// exitError ends the process with a status but without an error message;
// the command has already reported the problem.
type exitError int

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// usageError reports command-line mistakes with status 1 instead of
// kong's default usage status.
type usageError struct{ error }

func (usageError) ExitCode() int { return 1 }
func (e usageError) Unwrap() error { return e.error }

// exitCode is panicked by the kong exit hook to unwind out of parsing.
type exitCode int

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			ec, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(ec)
		}
	}()

	cli := &CLI{}
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}
	parser, err := kong.New(cli,
		kong.Name("tyname"),
		kong.Description("Canonical type names for type descriptors."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Bind(e),
	)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		parser.FatalIfErrorf(usageError{err})
	}
	e.configPath = cli.Config

	if err := kctx.Run(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return int(exit)
		}
		kctx.FatalIfErrorf(err)
	}
	return 0
}

// resolveMode returns the mode named by flag, or def when flag is empty.
func resolveMode(flag string, def tyname.Mode) (tyname.Mode, error) {
	if flag == "" {
		return def, nil
	}
	return tyname.ParseMode(flag)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
