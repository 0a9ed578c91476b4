package cmd

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

// handleMkdir creates folders. A new folder only emits postCreate, so the
// photo index is unchanged until images are written into it.
func (r *Router) handleMkdir(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("mkdir", flag.ContinueOnError)
	parents := flags.BoolP("parents", "p", false, "Create parent directories as needed")
	verbose := flags.BoolP("verbose", "v", false, "Print each created directory")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return fmt.Errorf("mkdir: missing operand")
	}

	for _, arg := range flags.Args() {
		dir := r.ResolvePath(arg)
		if err := r.Client.Mkdir(ctx, dir, *parents); err != nil {
			return err
		}
		if *verbose {
			r.Formatter.Printf("mkdir: created directory '%s'\n", dir)
		}
	}
	return nil
}
