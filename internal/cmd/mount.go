package cmd

import (
	"context"
	"fmt"

	"github.com/gary-kim/maps/internal/fs"
)

// handleMount declares external or shared storage inside a files root.
// Images under a mount are never indexed.
func (r *Router) handleMount(ctx context.Context, args []string) error {
	sub, rest, err := subcommand("mount", args, "add", "list")
	if err != nil {
		return err
	}

	if sub == "add" {
		if len(rest) != 2 {
			return fmt.Errorf("mount add: usage: mount add external|shared path")
		}
		kind, err := fs.ParseMountKind(rest[0])
		if err != nil {
			return fmt.Errorf("mount add: %w", err)
		}
		return r.Client.Mount(ctx, r.ResolvePath(rest[1]), kind)
	}

	mounts, err := r.Client.Mounts(ctx)
	if err != nil {
		return err
	}
	r.Formatter.PrintMounts(mounts)
	return nil
}
