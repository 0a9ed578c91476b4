package cmd

import (
	"context"
	"fmt"

	"github.com/gary-kim/maps/internal/metrics"
)

func (r *Router) handlePhotos(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		var err error
		if sub, _, err = subcommand("photos", args, "list", "rescan"); err != nil {
			return err
		}
	}

	if sub == "rescan" {
		if err := r.Photos.Rescan(ctx, r.State.User); err != nil {
			return err
		}
		if r.Formatter.JSON {
			return nil
		}
	}

	list, err := r.Photos.List(ctx, r.State.User)
	if err != nil {
		return err
	}
	if sub == "rescan" {
		r.Formatter.Printf("%d photos indexed for %s\n", len(list), r.State.User)
		return nil
	}
	r.Formatter.PrintPhotos(list)
	return nil
}

func (r *Router) handleStats(ctx context.Context, args []string) error {
	samples, err := metrics.Snapshot()
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	r.Formatter.PrintStats(samples)
	return nil
}
