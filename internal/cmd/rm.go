package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gary-kim/maps/internal/fs"
	flag "github.com/spf13/pflag"
)

// handleRm moves entries inside a user's files root to their trash; other
// entries are removed for good.
func (r *Router) handleRm(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("rm", flag.ContinueOnError)
	recursive := flags.BoolP("recursive", "r", false, "Remove directories and their contents recursively")
	force := flags.BoolP("force", "f", false, "Ignore nonexistent files")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() == 0 {
		return fmt.Errorf("rm: missing operand")
	}

	for _, arg := range flags.Args() {
		err := r.Client.Delete(ctx, r.ResolvePath(arg), *recursive)
		if err == nil {
			continue
		}
		if *force && errors.Is(err, fs.ErrNotFound) {
			continue
		}
		return err
	}
	return nil
}
