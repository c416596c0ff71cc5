package main

import (
	"fmt"

	"github.com/broady/tyname/internal/version"
	"github.com/fatih/color"
)

type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	bold := color.New(color.Bold)
	bold.Fprint(e.stdout, "tyname ")
	fmt.Fprintf(e.stdout, "%s (%s)\n", color.GreenString(version.Version()), version.GoVersion())
	return nil
}
