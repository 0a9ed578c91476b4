package cmd

import (
	"context"
	"fmt"
	"strconv"
)

// handleVersions lists or restores prior contents of a file. Versions are
// numbered from 1, newest first.
func (r *Router) handleVersions(ctx context.Context, args []string) error {
	sub, rest, err := subcommand("versions", args, "list", "restore")
	if err != nil {
		return err
	}

	if sub == "restore" {
		if len(rest) != 2 {
			return fmt.Errorf("versions restore: usage: versions restore path n")
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil || n < 1 {
			return fmt.Errorf("versions restore: invalid version '%s'", rest[1])
		}
		return r.Client.RestoreVersion(ctx, r.ResolvePath(rest[0]), n-1)
	}

	if len(rest) != 1 {
		return fmt.Errorf("versions list: usage: versions list path")
	}
	versions, err := r.Client.ListVersions(ctx, r.ResolvePath(rest[0]))
	if err != nil {
		return err
	}
	r.Formatter.PrintVersions(versions)
	return nil
}
