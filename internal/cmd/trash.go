package cmd

import (
	"context"
	"fmt"
)

func (r *Router) handleTrash(ctx context.Context, args []string) error {
	sub, rest, err := subcommand("trash", args, "list", "restore", "purge")
	if err != nil {
		return err
	}

	switch sub {
	case "restore":
		if len(rest) == 0 {
			return fmt.Errorf("trash restore: missing trash entry name")
		}
		for _, name := range rest {
			restored, err := r.Client.RestoreFromTrash(ctx, name)
			if err != nil {
				return err
			}
			if !r.Formatter.JSON {
				r.Formatter.Printf("restored %s\n", restored)
			}
		}
		return nil

	case "purge":
		if len(rest) == 0 {
			return fmt.Errorf("trash purge: missing trash entry name")
		}
		for _, name := range rest {
			if err := r.Client.PurgeTrash(ctx, name); err != nil {
				return err
			}
		}
		return nil

	default:
		entries, err := r.Client.ListTrash(ctx)
		if err != nil {
			return err
		}
		r.Formatter.PrintTrash(entries)
		return nil
	}
}
