package main

import (
	"fmt"

	"github.com/alnah/textflow"
)

func runValidate(args []string, env *Environment) error {
	f, err := parseValidateFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	s, err := loadSettings(f.common, env)
	if err != nil {
		return err
	}
	_, invs, err := loadInvocations(f.pipeline)
	if err != nil {
		return err
	}

	// Validation never fetches, so the browser and template document stay off.
	reg, err := buildRegistry(s, env, "", false)
	if err != nil {
		return err
	}

	problems := textflow.ValidateCommands(reg.Registry, invs)
	if len(problems) == 0 {
		fmt.Fprintf(env.Stdout, "OK: %d command(s) valid\n", len(invs))
		return nil
	}
	for _, msg := range problems {
		fmt.Fprintln(env.Stdout, msg)
	}
	return fmt.Errorf("%w: %d problem(s)", textflow.ErrValidation, len(problems))
}
