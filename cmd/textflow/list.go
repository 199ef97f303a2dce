package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/alnah/textflow/internal/config"
)

func runCommands(args []string, env *Environment) error {
	if len(args) > 0 && args[0] != "-h" && args[0] != "--help" {
		return fmt.Errorf("%w: commands takes no arguments", ErrUsage)
	}

	reg, err := buildRegistry(config.DefaultSettings(), env, "", false)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tARGUMENTS\tCONTENT TYPES")
	for _, c := range reg.Commands() {
		names := make([]string, 0, len(c.Args))
		for _, a := range c.Args {
			names = append(names, a.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Title, strings.Join(names, ","), strings.Join(c.AllowedContentTypes, ","))
	}
	return tw.Flush()
}
